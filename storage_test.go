package persist_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persist"
	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
	"github.com/syssam/persist/model"
	"github.com/syssam/persist/privacy"
	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"
)

func mockConn(t *testing.T, name string) (dialect.Driver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sql.OpenDB(name, db), mock
}

func TestSQLStorageCreate(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	mock.ExpectExec("INSERT INTO `users` (`name`) VALUES (?)").
		WithArgs("a8m").
		WillReturnResult(sqlmock.NewResult(7, 1))

	user := newUser("a8m")
	ok, err := persist.NewSQLStorage(dialect.SQLite, nil).Save(context.Background(), drv, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(7), user.Key())
	assert.True(t, user.Exists())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageCreatePostgres(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.Postgres)
	mock.ExpectQuery(`INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`).
		WithArgs("a8m").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

	user := newUser("a8m")
	ok, err := persist.NewSQLStorage(dialect.Postgres, nil).Save(context.Background(), drv, user)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(3), user.Key())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageCreateUUID(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	mock.ExpectExec("INSERT INTO `videos` (`id`, `title`) VALUES (?, ?)").
		WithArgs(sqlmock.AnyArg(), "v").
		WillReturnResult(sqlmock.NewResult(0, 1))

	video := model.New(Video).Set("title", "v")
	ok, err := persist.NewSQLStorage(dialect.SQLite, nil).Save(context.Background(), drv, video)
	require.NoError(t, err)
	assert.True(t, ok)
	key, isString := video.Key().(string)
	require.True(t, isString)
	assert.Len(t, key, 36)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageUpdate(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.MySQL)
	mock.ExpectExec("UPDATE `posts` SET `title` = ?, `user_id` = ? WHERE `id` = ?").
		WithArgs("t", int64(2), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	post := newPost("t").Set("user_id", int64(2))
	post.SetKey(int64(5))
	post.MarkExists()
	ok, err := persist.NewSQLStorage(dialect.MySQL, nil).Save(context.Background(), drv, post)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageVeto(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	s := persist.NewSQLStorage(dialect.SQLite, nil)

	ok, err := s.Save(context.Background(), drv, model.New(Comment).Set("body", "spam"))
	require.NoError(t, err)
	assert.False(t, ok)

	ctx := privacy.DecisionContext(context.Background(), privacy.Deny)
	ok, err = s.Save(ctx, drv, newUser("u"))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoragePolicyError(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	ctx := privacy.DecisionContext(context.Background(), assert.AnError)
	ok, err := persist.NewSQLStorage(dialect.SQLite, nil).Save(ctx, drv, newUser("u"))
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageCreateError(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	mock.ExpectExec("INSERT INTO `tags` (`name`) VALUES (?)").
		WithArgs("go").
		WillReturnError(assert.AnError)

	ok, err := persist.NewSQLStorage(dialect.SQLite, nil).Save(context.Background(), drv, model.New(Tag).Set("name", "go"))
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	var merr *persist.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "create", merr.Op)
	assert.Equal(t, "Tag", merr.Entity)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageAssociate(t *testing.T) {
	t.Parallel()

	s := persist.NewSQLStorage(dialect.SQLite, nil)
	user := newUser("u")
	user.SetKey(int64(9))
	post := newPost("t").Set("user", user)
	insts := model.OfKind(post, edge.OwnedSingular)
	require.Len(t, insts, 1)
	require.NoError(t, s.Associate(context.Background(), nil, insts[0]))
	fk, ok := post.Attribute("user_id")
	require.True(t, ok)
	assert.Equal(t, int64(9), fk)

	video := model.New(Video)
	video.SetKey("0b7e3a3c-6f0e-4ab8-9b1c-64e1a4a2b9d1")
	comment := model.New(Comment).Set("commentable", video)
	insts = model.Instances(comment)
	require.Len(t, insts, 1)
	require.NoError(t, s.Associate(context.Background(), nil, insts[0]))
	id, _ := comment.Attribute("commentable_id")
	typ, _ := comment.Attribute("commentable_type")
	assert.Equal(t, video.Key(), id)
	assert.Equal(t, "video", typ)
}

func TestSQLStorageAttach(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	mock.ExpectQuery("SELECT COUNT(*) FROM `post_tag` WHERE (`post_id` = ?) AND (`tag_id` = ?)").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `post_tag` (`post_id`, `tag_id`) VALUES (?, ?)").
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT COUNT(*) FROM `post_tag` WHERE (`post_id` = ?) AND (`tag_id` = ?)").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	tag := model.New(Tag).Set("name", "go")
	tag.SetKey(int64(2))
	post := newPost("t").Set("tags", []model.Persistable{tag})
	post.SetKey(int64(1))
	insts := model.Instances(post)
	require.Len(t, insts, 1)

	s := persist.NewSQLStorage(dialect.SQLite, nil)
	require.NoError(t, s.Attach(context.Background(), drv, insts[0], tag))
	require.NoError(t, s.Attach(context.Background(), drv, insts[0], tag))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageAttachWithoutKey(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	tag := model.New(Tag).Set("name", "go")
	post := newPost("t").Set("tags", []model.Persistable{tag})
	post.SetKey(int64(1))

	err := persist.NewSQLStorage(dialect.SQLite, nil).Attach(context.Background(), drv, model.Instances(post)[0], tag)
	require.ErrorIs(t, err, persist.ErrKeyNotAssigned)
	assert.True(t, persist.IsMutationError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStorageAssociateOwnerKey(t *testing.T) {
	t.Parallel()

	review := &schema.Type{
		Name:  "Review",
		Edges: []schema.Edge{edge.BelongsTo("author", "User").Field("author_name").OwnerKey("name")},
	}
	s := persist.NewSQLStorage(dialect.SQLite, nil)

	author := model.New(User)
	author.SetKey(int64(4))
	rec := model.New(review).Set("author", author)
	err := s.Associate(context.Background(), nil, model.Instances(rec)[0])
	require.ErrorIs(t, err, persist.ErrKeyNotAssigned)
	assert.True(t, persist.IsMutationError(err))
	_, ok := rec.Attribute("author_name")
	assert.False(t, ok)

	author.Set("name", "a8m")
	require.NoError(t, s.Associate(context.Background(), nil, model.Instances(rec)[0]))
	name, _ := rec.Attribute("author_name")
	assert.Equal(t, "a8m", name)
}

func TestSQLStorageAssociateUnsaved(t *testing.T) {
	t.Parallel()

	post := newPost("t").Set("user", newUser("u"))
	err := persist.NewSQLStorage(dialect.SQLite, nil).Associate(context.Background(), nil, model.Instances(post)[0])
	require.ErrorIs(t, err, persist.ErrKeyNotAssigned)
}

func TestSQLStorageUpdateMissingRow(t *testing.T) {
	t.Parallel()

	drv, mock := mockConn(t, dialect.SQLite)
	mock.ExpectExec("UPDATE `users` SET `name` = ? WHERE `id` = ?").
		WithArgs("u", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	user := newUser("u")
	user.SetKey(int64(1))
	user.MarkExists()
	ok, err := persist.NewSQLStorage(dialect.SQLite, nil).Save(context.Background(), drv, user)
	assert.False(t, ok)
	require.ErrorIs(t, err, sql.ErrNoRows)
	var merr *persist.MutationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "update", merr.Op)
	require.NoError(t, mock.ExpectationsWereMet())
}
