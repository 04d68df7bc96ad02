package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

func TestCommentService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	post := env.createPost(t, alice.ID, "post")

	first, err := env.comments.Create(ctx, post.ID, bob.ID, model.CreateCommentRequest{Content: "<b>first</b>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;first&lt;&#x2F;b&gt;", first.Content)
	assert.Equal(t, post.ID, first.PostID)
	require.NotNil(t, first.Author)
	assert.Equal(t, "bob", first.Author.Username)

	_, err = env.comments.Create(ctx, post.ID, alice.ID, model.CreateCommentRequest{Content: "second"})
	require.NoError(t, err)

	comments, err := env.comments.List(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Content, "newest first")

	assert.Equal(t, 2, env.scalar(t, `SELECT comments_count FROM posts WHERE id = ?`, post.ID))
}

func TestCommentService_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	post := env.createPost(t, alice.ID, "post")

	_, err := env.comments.Create(ctx, uuid.NewString(), alice.ID, model.CreateCommentRequest{Content: "hi"})
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	_, err = env.comments.Create(ctx, post.ID, alice.ID, model.CreateCommentRequest{Content: " "})
	assert.ErrorIs(t, err, model.ErrContentRequired)

	_, err = env.comments.List(ctx, uuid.NewString(), alice.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	assert.Equal(t, 0, env.scalar(t, `SELECT comments_count FROM posts WHERE id = ?`, post.ID))
}

func TestCommentService_DeleteDecrementsByExactlyOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	post := env.createPost(t, alice.ID, "post")

	keep, err := env.comments.Create(ctx, post.ID, alice.ID, model.CreateCommentRequest{Content: "keep"})
	require.NoError(t, err)
	drop, err := env.comments.Create(ctx, post.ID, bob.ID, model.CreateCommentRequest{Content: "drop"})
	require.NoError(t, err)

	err = env.comments.Delete(ctx, drop.ID, alice.ID)
	assert.ErrorIs(t, err, model.ErrNotCommentOwner)
	assert.Equal(t, 2, env.scalar(t, `SELECT comments_count FROM posts WHERE id = ?`, post.ID))

	require.NoError(t, env.comments.Delete(ctx, drop.ID, bob.ID))

	got, err := env.posts.Get(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, keep.ID, got.Comments[0].ID)

	err = env.comments.Delete(ctx, drop.ID, bob.ID)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
	assert.Equal(t, 1, env.scalar(t, `SELECT comments_count FROM posts WHERE id = ?`, post.ID))
}

func TestCommentService_ToggleLike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bob")
	post := env.createPost(t, alice.ID, "post")
	c, err := env.comments.Create(ctx, post.ID, alice.ID, model.CreateCommentRequest{Content: "c"})
	require.NoError(t, err)

	res, err := env.comments.ToggleLike(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Liked: true, LikesCount: 1}, *res)

	res, err = env.comments.ToggleLike(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Liked: true, LikesCount: 2}, *res)

	comments, err := env.comments.List(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsLiked)
	assert.ElementsMatch(t, []string{alice.ID, bob.ID}, comments[0].Likes)

	res, err = env.comments.ToggleLike(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LikeResult{Liked: false, LikesCount: 1}, *res)

	_, err = env.comments.ToggleLike(ctx, uuid.NewString(), bob.ID)
	assert.ErrorIs(t, err, model.ErrCommentNotFound)
}
