package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

func TestPostRepository_GetByIDResolvesAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	p := seedPost(t, db, alice.ID, time.Now().UTC())

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, alice.ID, got.Author.ID)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Equal(t, alice.ID, got.AuthorID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestPostRepository_LikePrimitives(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	p := seedPost(t, db, alice.ID, time.Now().UTC())

	err := inTx(t, db, func(tx *sqlx.Tx) error {
		return repo.LockForUpdate(ctx, tx, uuid.NewString())
	})
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		require.NoError(t, repo.LockForUpdate(ctx, tx, p.ID))

		added, err := repo.AddLike(ctx, tx, p.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repo.AddLike(ctx, tx, p.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, added, "second insert of the same pair is a no-op")

		n, err := repo.IncrementLikeCount(ctx, tx, p.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	}))

	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		removed, err := repo.RemoveLike(ctx, tx, p.ID, alice.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.RemoveLike(ctx, tx, p.ID, alice.ID)
		require.NoError(t, err)
		assert.False(t, removed)

		n, err := repo.IncrementLikeCount(ctx, tx, p.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		// Over-decrement is clamped.
		n, err = repo.IncrementLikeCount(ctx, tx, p.ID, -1)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		return nil
	}))
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedPost(t, db, alice.ID, time.Now().UTC())
	other := seedPost(t, db, alice.ID, time.Now().UTC())
	c := seedComment(t, db, p.ID, bob.ID)
	seedComment(t, db, other.ID, bob.ID)

	_, err := db.Exec(`INSERT INTO tags (id, name) VALUES ('t1', 'music')`)
	require.NoError(t, err)

	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		if _, err := repo.AddLike(ctx, tx, p.ID, bob.ID); err != nil {
			return err
		}
		if _, err := commentRepo.AddLike(ctx, tx, c.ID, alice.ID); err != nil {
			return err
		}
		return repo.AddTags(ctx, tx, p.ID, []string{"t1"})
	}))

	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		return repo.Delete(ctx, tx, p.ID)
	}))

	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM posts WHERE id = ?`, p.ID))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, p.ID))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM comment_likes WHERE comment_id = ?`, c.ID))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM post_likes WHERE post_id = ?`, p.ID))
	assert.Equal(t, 0, count(t, db, `SELECT COUNT(*) FROM post_tags WHERE post_id = ?`, p.ID))
	// Unrelated rows survive.
	assert.Equal(t, 1, count(t, db, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, other.ID))

	err = inTx(t, db, func(tx *sqlx.Tx) error {
		return repo.Delete(ctx, tx, p.ID)
	})
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestPostRepository_ListPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, seedPost(t, db, alice.ID, base.Add(time.Duration(i)*time.Minute)).ID)
	}

	posts, total, err := repo.List(ctx, PostFilter{}, model.NewPage(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, posts, 2)
	assert.Equal(t, ids[4], posts[0].ID, "newest first")
	assert.Equal(t, ids[3], posts[1].ID)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "alice", posts[0].Author.Username)

	posts, _, err = repo.List(ctx, PostFilter{}, model.NewPage(3, 2))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, ids[0], posts[0].ID)
}

func TestPostRepository_ListAllAndByAuthor(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	now := time.Now().UTC()

	seedPost(t, db, alice.ID, now)
	seedPost(t, db, bob.ID, now.Add(time.Second))
	seedPost(t, db, carol.ID, now.Add(2*time.Second))

	all, total, err := repo.List(ctx, PostFilter{}, model.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)
	authors := []string{all[0].AuthorID, all[1].AuthorID, all[2].AuthorID}
	assert.Equal(t, []string{carol.ID, bob.ID, alice.ID}, authors)

	own, total, err := repo.List(ctx, PostFilter{AuthorID: carol.ID}, model.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, own, 1)
	assert.Equal(t, carol.ID, own[0].AuthorID)
}

func TestPostRepository_TagsAndLikers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	p := seedPost(t, db, alice.ID, time.Now().UTC())

	_, err := db.Exec(`INSERT INTO tags (id, name) VALUES ('t1', 'travel'), ('t2', 'food')`)
	require.NoError(t, err)

	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		if err := repo.AddTags(ctx, tx, p.ID, []string{"t1", "t2", "t1"}); err != nil {
			return err
		}
		if _, err := repo.AddLike(ctx, tx, p.ID, alice.ID); err != nil {
			return err
		}
		_, err := repo.AddLike(ctx, tx, p.ID, bob.ID)
		return err
	}))

	tags, err := repo.GetTags(ctx, []string{p.ID})
	require.NoError(t, err)
	require.Len(t, tags[p.ID], 2)
	assert.Equal(t, "food", tags[p.ID][0].Name)
	assert.Equal(t, "travel", tags[p.ID][1].Name)

	likers, err := repo.GetLikers(ctx, []string{p.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, likers[p.ID])
}
