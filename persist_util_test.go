package persist_test

import (
	"context"
	stdsql "database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/syssam/persist/dialect"
	"github.com/syssam/persist/dialect/sql"
	"github.com/syssam/persist/model"
	"github.com/syssam/persist/privacy"
	"github.com/syssam/persist/schema"
	"github.com/syssam/persist/schema/edge"

	"github.com/stretchr/testify/require"
)

var (
	User = &schema.Type{
		Name:  "User",
		Edges: []schema.Edge{edge.HasMany("posts", "Post")},
	}
	Post = &schema.Type{
		Name: "Post",
		Edges: []schema.Edge{
			edge.BelongsTo("user", "User"),
			edge.HasOne("details", "PostDetails"),
			edge.MorphMany("comments", "Comment", "commentable"),
			edge.BelongsToMany("tags", "Tag"),
		},
	}
	// StrictPost is stored like Post but cannot be saved without details.
	StrictPost = &schema.Type{
		Name:  "Post",
		Table: "posts",
		Edges: []schema.Edge{
			edge.BelongsTo("user", "User"),
			edge.HasOne("details", "PostDetails").Required(),
			edge.BelongsToMany("tags", "Tag").Required(),
		},
	}
	PostDetails = &schema.Type{Name: "PostDetails"}
	Comment     = &schema.Type{
		Name:  "Comment",
		Edges: []schema.Edge{edge.MorphTo("commentable")},
		Policy: privacy.SaveRuleFunc(func(_ context.Context, e privacy.Entity) error {
			if body, _ := e.Attribute("body"); body == "spam" {
				return privacy.Denyf("spam comment")
			}
			return privacy.Skip
		}),
	}
	Tag   = &schema.Type{Name: "Tag"}
	Video = &schema.Type{
		Name:       "Video",
		KeyType:    schema.KeyUUID,
		MorphClass: "video",
		Edges:      []schema.Edge{edge.MorphMany("comments", "Comment", "commentable")},
	}
)

const ddl = `
CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT);
CREATE TABLE posts (id INTEGER PRIMARY KEY AUTOINCREMENT, title TEXT, user_id INTEGER);
CREATE TABLE post_details (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT, post_id INTEGER NOT NULL);
CREATE TABLE comments (id INTEGER PRIMARY KEY AUTOINCREMENT, body TEXT, commentable_id TEXT, commentable_type TEXT);
CREATE TABLE tags (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT UNIQUE);
CREATE TABLE post_tag (post_id INTEGER NOT NULL, tag_id INTEGER NOT NULL, PRIMARY KEY (post_id, tag_id));
CREATE TABLE videos (id TEXT PRIMARY KEY, title TEXT);
CREATE TABLE persist_outbox (id TEXT PRIMARY KEY, name TEXT NOT NULL, payload BLOB NOT NULL, created_at TIMESTAMP NOT NULL);
`

// openSQLite returns an in-memory database with the test tables. The pool
// holds a single connection, as every connection of :memory: is a
// different database.
func openSQLite(t *testing.T) (*stdsql.DB, *sql.StatsDriver) {
	t.Helper()
	db, err := stdsql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(ddl)
	require.NoError(t, err)
	return db, sql.NewStatsDriver(sql.OpenDB(dialect.SQLite, db))
}

func count(t *testing.T, db *stdsql.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(query, args...).Scan(&n))
	return n
}

func newUser(name string) *model.Model {
	return model.New(User).Set("name", name)
}

func newPost(title string) *model.Model {
	return model.New(Post).Set("title", title)
}
