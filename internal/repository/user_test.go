package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/model"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, 0, got.PostsCount)
	assert.False(t, got.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, byEmail.ID)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_CreateDuplicates(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")

	err := repo.Create(ctx, &model.User{ID: uuid.NewString(), Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	err = repo.Create(ctx, &model.User{ID: uuid.NewString(), Username: "alice2", Email: "alice@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, model.ErrEmailExists)
}

func TestUserRepository_ExistsByUsernameExcludesSelf(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	taken, err := repo.ExistsByUsername(ctx, "alice", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken, "own username must not count as taken")

	taken, err = repo.ExistsByUsername(ctx, "alice", bob.ID)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestUserRepository_Search(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")
	seedUser(t, db, "Alicia_b")
	seedUser(t, db, "bob")
	seedUser(t, db, "under_score")
	seedUser(t, db, "underXscore")

	users, err := repo.Search(ctx, "ALI", 10)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Contains(t, []string{"alice", "Alicia_b"}, u.Username)
	}

	// Matches full name too.
	users, err = repo.Search(ctx, "full bob", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "bob", users[0].Username)

	// '_' is literal, not a wildcard.
	users, err = repo.Search(ctx, "r_s", 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "under_score", users[0].Username)

	users, err = repo.Search(ctx, "e", 2)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserRepository_SearchMatchesTypedText(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	for _, u := range []*model.User{
		{Username: "tom", FullName: model.EscapeHTML("Tom & Jerry")},
		{Username: "conan", FullName: model.EscapeHTML("Conan O'Brien")},
		{Username: "slash", FullName: model.EscapeHTML("a/b <c>")},
		{Username: "literal", FullName: model.EscapeHTML("&lt;")},
	} {
		u.ID = uuid.NewString()
		u.Email = u.Username + "@example.com"
		u.PasswordHash = "hash"
		require.NoError(t, repo.Create(ctx, u))
	}

	tests := []struct {
		query string
		want  []string
	}{
		{query: "& j", want: []string{"tom"}},
		{query: "o'b", want: []string{"conan"}},
		{query: "A/B <C", want: []string{"slash"}},
		{query: "&lt;", want: []string{"literal"}},
		{query: "<", want: []string{"slash"}},
		{query: "amp", want: nil},
		{query: "x27", want: nil},
		{query: "#x2f", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			users, err := repo.Search(ctx, tt.query, 10)
			require.NoError(t, err)
			var got []string
			for _, u := range users {
				got = append(got, u.Username)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRepository_UpdatePartial(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedUser(t, db, "bob")

	bio := "hello"
	require.NoError(t, repo.Update(ctx, alice.ID, model.UpdateProfileRequest{Bio: &bio}))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Bio)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "Full alice", got.FullName)

	taken := "bob"
	err = repo.Update(ctx, alice.ID, model.UpdateProfileRequest{Username: &taken})
	assert.ErrorIs(t, err, model.ErrUsernameExists)

	err = repo.Update(ctx, uuid.NewString(), model.UpdateProfileRequest{Bio: &bio})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
}

func TestUserRepository_PostsCountClampsAtZero(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	require.NoError(t, inTx(t, db, func(tx *sqlx.Tx) error {
		return repo.IncrementPostsCount(ctx, tx, alice.ID, -1)
	}))

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.PostsCount)
}

func TestUserRepository_GetSummaries(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	summaries, err := repo.GetSummaries(context.Background(), []string{alice.ID, bob.ID, uuid.NewString()})
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
	assert.Equal(t, "bob", summaries[bob.ID].Username)
	assert.Equal(t, "Full alice", summaries[alice.ID].FullName)
}
