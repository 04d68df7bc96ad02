package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

func followerIDs(users []model.UserSummary) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}

func TestFollowService_Symmetry(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	require.NoError(t, env.follows.Follow(ctx, a.ID, b.ID))

	profileA, err := env.users.GetProfile(ctx, a.ID, a.ID)
	require.NoError(t, err)
	profileB, err := env.users.GetProfile(ctx, b.ID, a.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID}, followerIDs(profileA.Following))
	assert.Equal(t, []string{a.ID}, followerIDs(profileB.Followers))
	assert.Equal(t, 1, profileB.FollowersCount)
	assert.True(t, profileB.IsFollowing)

	require.NoError(t, env.follows.Unfollow(ctx, a.ID, b.ID))

	profileA, err = env.users.GetProfile(ctx, a.ID, a.ID)
	require.NoError(t, err)
	profileB, err = env.users.GetProfile(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.Empty(t, profileA.Following)
	assert.Empty(t, profileB.Followers)
	assert.False(t, profileB.IsFollowing)
}

func TestFollowService_DuplicateFollowIsRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	require.NoError(t, env.follows.Follow(ctx, a.ID, b.ID))
	err := env.follows.Follow(ctx, a.ID, b.ID)
	assert.ErrorIs(t, err, model.ErrAlreadyFollowing)

	assert.Equal(t, 1, env.scalar(t, `SELECT COUNT(*) FROM follows`))
}

func TestFollowService_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "alice")

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{"follow self", func() error { return env.follows.Follow(ctx, a.ID, a.ID) }, model.ErrCannotFollowSelf},
		{"follow unknown", func() error { return env.follows.Follow(ctx, a.ID, uuid.NewString()) }, model.ErrUserNotFound},
		{"unfollow unknown", func() error { return env.follows.Unfollow(ctx, a.ID, uuid.NewString()) }, model.ErrUserNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.wantErr)
		})
	}
}

func TestFollowService_UnfollowNotFollowedSucceeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a := env.register(t, "alice")
	b := env.register(t, "bob")

	assert.NoError(t, env.follows.Unfollow(ctx, a.ID, b.ID))
	assert.Equal(t, 0, env.scalar(t, `SELECT COUNT(*) FROM follows`))
}
