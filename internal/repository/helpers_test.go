package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))
	return db
}

func seedUser(t *testing.T, db *sqlx.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		FullName:     "Full " + username,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedPost(t *testing.T, db *sqlx.DB, authorID string, createdAt time.Time) *model.Post {
	t.Helper()
	ctx := context.Background()
	p := &model.Post{ID: uuid.NewString(), AuthorID: authorID, Content: fmt.Sprintf("post at %s", createdAt), CreatedAt: createdAt}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, NewPostRepository(db).Create(ctx, tx, p))
	require.NoError(t, NewUserRepository(db).IncrementPostsCount(ctx, tx, authorID, 1))
	require.NoError(t, tx.Commit())
	return p
}

func seedComment(t *testing.T, db *sqlx.DB, postID, authorID string) *model.Comment {
	t.Helper()
	ctx := context.Background()
	c := &model.Comment{ID: uuid.NewString(), PostID: postID, AuthorID: authorID, Content: "nice"}

	tx, err := db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	require.NoError(t, NewPostRepository(db).IncrementCommentCount(ctx, tx, postID, 1))
	require.NoError(t, NewCommentRepository(db).Create(ctx, tx, c))
	require.NoError(t, tx.Commit())
	return c
}

// inTx runs fn in a transaction and commits when it succeeds.
func inTx(t *testing.T, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	t.Helper()
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func count(t *testing.T, db *sqlx.DB, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, db.Rebind(query), args...))
	return n
}
