package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"socialnet/internal/config"
	"socialnet/internal/database"
	"socialnet/internal/model"
	"socialnet/internal/repository"
	"socialnet/internal/storage"
)

// testEnv wires every service against an in-memory SQLite store.
type testEnv struct {
	db        *sqlx.DB
	uploadDir string
	users     *UserService
	posts     *PostService
	comments  *CommentService
	follows   *FollowService
	tags      *TagService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, config.DriverSQLite))

	log, _ := logtest.NewNullLogger()
	uploadDir := t.TempDir()
	store, err := storage.NewLocalStore(uploadDir, "/uploads")
	require.NoError(t, err)
	media := NewMediaService(store, log)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	tagRepo := repository.NewTagRepository(db)

	clock := steppingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	posts := NewPostService(db, postRepo, userRepo, tagRepo, commentRepo, media, log)
	posts.now = clock
	comments := NewCommentService(db, commentRepo, postRepo, log)
	comments.now = clock

	return &testEnv{
		db:        db,
		uploadDir: uploadDir,
		users:     NewUserService(userRepo, followRepo, posts, media, log),
		posts:     posts,
		comments:  comments,
		follows:   NewFollowService(followRepo, userRepo, log),
		tags:      NewTagService(tagRepo, nil, log),
	}
}

// steppingClock returns a clock that advances one second per call.
func steppingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	next := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now := next
		next = next.Add(time.Second)
		return now
	}
}

func (e *testEnv) register(t *testing.T, username string) *model.User {
	t.Helper()
	u, err := e.users.Register(context.Background(), &model.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
		FullName: "Full " + username,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) createPost(t *testing.T, authorID, content string) *model.Post {
	t.Helper()
	p, err := e.posts.Create(context.Background(), authorID, model.CreatePostRequest{Content: content}, nil)
	require.NoError(t, err)
	return p
}

func (e *testEnv) seedTags(t *testing.T, names ...string) map[string]string {
	t.Helper()
	ctx := context.Background()
	_, err := e.tags.Seed(ctx, names)
	require.NoError(t, err)
	tags, err := e.tags.List(ctx)
	require.NoError(t, err)
	ids := make(map[string]string, len(tags))
	for _, tag := range tags {
		ids[tag.Name] = tag.ID
	}
	return ids
}

func (e *testEnv) scalar(t *testing.T, query string, args ...interface{}) int {
	t.Helper()
	var n int
	require.NoError(t, e.db.Get(&n, e.db.Rebind(query), args...))
	return n
}

func (e *testEnv) postsCount(t *testing.T, userID string) int {
	return e.scalar(t, `SELECT posts_count FROM users WHERE id = ?`, userID)
}
