package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error)
	Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error)
	// Update applies only the non-nil fields of req.
	Update(ctx context.Context, id string, req model.UpdateProfileRequest) error
	UpdateAvatar(ctx context.Context, id, avatar string) error
	IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID string, delta int) error
}

type FollowRepository interface {
	Create(ctx context.Context, followerID, followeeID string) (bool, error)
	Delete(ctx context.Context, followerID, followeeID string) (bool, error)
	Exists(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFollowers(ctx context.Context, userID string) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID string) ([]model.UserSummary, error)
}

// PostFilter selects which posts a listing returns. The zero value lists every post.
type PostFilter struct {
	AuthorID string
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	AddTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error
	GetByID(ctx context.Context, postID string) (*model.Post, error)
	// GetForUpdate locks the post row for the rest of tx.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, postID string) (*model.Post, error)
	Update(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	// Delete removes the post together with its comments, likes and tags.
	Delete(ctx context.Context, tx *sqlx.Tx, postID string) error
	// List pages newest first; page.Limit == 0 means no limit.
	List(ctx context.Context, filter PostFilter, page model.Page) ([]model.Post, int, error)
	GetLikers(ctx context.Context, postIDs []string) (map[string][]string, error)
	GetTags(ctx context.Context, postIDs []string) (map[string][]model.Tag, error)
	// Like methods
	LockForUpdate(ctx context.Context, tx *sqlx.Tx, postID string) error
	AddLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error)
	RemoveLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID string, delta int) (int, error)
	IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID string, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	GetByID(ctx context.Context, commentID string) (*model.Comment, error)
	// Delete removes the comment and its likes. It reports false if the comment was already gone.
	Delete(ctx context.Context, tx *sqlx.Tx, commentID string) (bool, error)
	ListByPost(ctx context.Context, postID string, newestFirst bool) ([]model.Comment, error)
	GetLikers(ctx context.Context, commentIDs []string) (map[string][]string, error)
	// Like methods
	LockForUpdate(ctx context.Context, tx *sqlx.Tx, commentID string) error
	AddLike(ctx context.Context, tx *sqlx.Tx, commentID, userID string) (bool, error)
	RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID, userID string) (bool, error)
	IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, commentID string, delta int) (int, error)
}

type TagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	GetByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) ([]model.Tag, error)
	// Upsert inserts missing names and returns how many were new.
	Upsert(ctx context.Context, names []string) (int, error)
}

// CounterRepository recomputes denormalized counters from the authoritative rows.
type CounterRepository interface {
	Reconcile(ctx context.Context) (map[string]int64, error)
}
