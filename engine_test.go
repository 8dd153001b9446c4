package persist_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/persist"
	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
	"github.com/syssam/persist/model"
	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"
)

// recorder is a Storage that writes nothing and records the calls it gets.
type recorder struct {
	calls []string
	next  int64
	veto  map[model.Persistable]bool
	fail  map[model.Persistable]error
}

func (r *recorder) Save(_ context.Context, _ dialect.ExecQuerier, rec model.Persistable) (bool, error) {
	name, _ := rec.Attribute("name")
	r.calls = append(r.calls, fmt.Sprintf("save %s", name))
	if err := r.fail[rec]; err != nil {
		return false, err
	}
	if r.veto[rec] {
		return false, nil
	}
	if !rec.Exists() {
		r.next++
		rec.SetKey(r.next)
		rec.MarkExists()
	}
	return true, nil
}

func (r *recorder) Associate(ctx context.Context, ex dialect.ExecQuerier, inst model.Instance) error {
	r.calls = append(r.calls, "associate "+inst.Name)
	return persist.NewSQLStorage(dialect.SQLite, nil).Associate(ctx, ex, inst)
}

func (r *recorder) Attach(_ context.Context, _ dialect.ExecQuerier, inst model.Instance, related model.Persistable) error {
	name, _ := related.Attribute("name")
	r.calls = append(r.calls, fmt.Sprintf("attach %s %s", inst.Name, name))
	return nil
}

var (
	Node = &schema.Type{
		Name: "Node",
		Edges: []schema.Edge{
			edge.BelongsTo("parent", "Node"),
			edge.BelongsToEach("sources", "Node"),
			edge.HasOne("child", "Node"),
			edge.HasMany("children", "Node").Field("parent_id"),
			edge.BelongsToMany("links", "Node").Through("node_links", "node_id", "link_id"),
		},
	}
)

func newNode(name string) *model.Model {
	return model.New(Node).Set("name", name)
}

func mockPersister(t *testing.T, storage persist.Storage) (*persist.Persister, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	p, err := persist.New(sql.OpenDB(dialect.SQLite, db), persist.WithStorage(storage))
	require.NoError(t, err)
	return p, mock
}

func TestCascadeOrder(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectCommit()

	root := newNode("root").
		Set("parent", newNode("parent").Set("parent", newNode("grandparent"))).
		Set("sources", []model.Persistable{newNode("source")}).
		Set("child", newNode("child")).
		Set("children", []model.Persistable{newNode("a"), newNode("b").Set("child", newNode("b1"))}).
		Set("links", []model.Persistable{newNode("link")})
	ok, err := p.Persist(context.Background(), root)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{
		"save grandparent",
		"associate parent",
		"save parent",
		"save source",
		"associate parent",
		"associate sources",
		"save root",
		"save child",
		"save a",
		"save b",
		"save b1",
		"save link",
		"attach links link",
	}, r.calls)
	require.NoError(t, mock.ExpectationsWereMet())

	parentID, _ := root.Attribute("parent_id")
	assert.Equal(t, int64(2), parentID)
	fk, _ := newNodeRelation(t, root, "children", 1).Attribute("parent_id")
	assert.Equal(t, root.Key(), fk)
	fk, _ = newNodeRelation(t, root, "child", 0).Attribute("node_id")
	assert.Equal(t, root.Key(), fk)
	_, ok = root.Attribute("sources_id")
	assert.False(t, ok, "plural owned relations have no foreign key")
}

func newNodeRelation(t *testing.T, rec model.Persistable, name string, i int) model.Persistable {
	t.Helper()
	v, ok := rec.Relation(name)
	require.True(t, ok)
	require.Greater(t, v.Len(), i)
	return v.Records()[i]
}

func TestCascadeVetoStopsWalk(t *testing.T) {
	t.Parallel()

	child := newNode("child")
	r := &recorder{veto: map[model.Persistable]bool{child: true}}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectRollback()

	root := newNode("root").
		Set("parent", newNode("parent")).
		Set("children", []model.Persistable{child, newNode("after")}).
		Set("links", []model.Persistable{newNode("link")})
	ok, err := p.Persist(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"save parent", "associate parent", "save root", "save child"}, r.calls)
	assert.False(t, root.Exists())
	assert.Nil(t, root.Key())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeOwnedVetoSkipsParent(t *testing.T) {
	t.Parallel()

	parent := newNode("parent")
	r := &recorder{veto: map[model.Persistable]bool{parent: true}}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ok, err := p.Persist(context.Background(), newNode("root").Set("parent", parent))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"save parent"}, r.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeStorageError(t *testing.T) {
	t.Parallel()

	child := newNode("child")
	r := &recorder{fail: map[model.Persistable]error{child: assert.AnError}}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ok, err := p.Persist(context.Background(), newNode("root").Set("child", child))
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, persist.IsRollbackError(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeRollbackFailure(t *testing.T) {
	t.Parallel()

	child := newNode("child")
	r := &recorder{fail: map[model.Persistable]error{child: assert.AnError}}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(fmt.Errorf("connection reset"))

	ok, err := p.Persist(context.Background(), newNode("root").Set("child", child))
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	assert.True(t, persist.IsRollbackError(err))
	assert.ErrorContains(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeCommitError(t *testing.T) {
	t.Parallel()

	p, mock := mockPersister(t, &recorder{})
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(assert.AnError)

	root := newNode("root")
	root.RecordEvent("root.saved")
	ok, err := p.Persist(context.Background(), root)
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, root.Exists())
	assert.Nil(t, root.Key())
	assert.Equal(t, []any{"root.saved"}, root.Events())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeBeginError(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin().WillReturnError(assert.AnError)

	ok, err := p.Persist(context.Background(), newNode("root"))
	assert.False(t, ok)
	require.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, r.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeCycle(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectCommit()

	a, b := newNode("a"), newNode("b")
	a.Set("children", []model.Persistable{b})
	b.Set("children", []model.Persistable{a})
	ok, err := p.Persist(context.Background(), a)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"save a", "save b"}, r.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeSharedRecordSavedOnce(t *testing.T) {
	t.Parallel()

	r := &recorder{}
	p, mock := mockPersister(t, r)
	mock.ExpectBegin()
	mock.ExpectCommit()

	shared := newNode("shared")
	root := newNode("root").
		Set("parent", shared).
		Set("links", []model.Persistable{shared})
	ok, err := p.Persist(context.Background(), root)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"save shared", "associate parent", "save root", "attach links shared"}, r.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCascadeSavepoint(t *testing.T) {
	t.Parallel()

	child := newNode("child")
	r := &recorder{veto: map[model.Persistable]bool{child: true}}
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()
	drv := sql.OpenDB(dialect.SQLite, db)
	p, err := persist.New(drv, persist.WithStorage(r))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("SAVEPOINT persist_sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("RELEASE SAVEPOINT persist_sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SAVEPOINT persist_sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ROLLBACK TO SAVEPOINT persist_sp_1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	ctx = persist.NewTxContext(ctx, tx)

	ok, err := p.Persist(ctx, newNode("first"))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = p.Persist(ctx, newNode("second").Set("child", child))
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
