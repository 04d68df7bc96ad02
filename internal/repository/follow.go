package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

// followRepository stores the follow relation as one row per (follower, followee),
// so both sides of the relation change in a single statement.
type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO follows (follower_id, followee_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`)
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID, now())
	if err != nil {
		return false, fmt.Errorf("failed to create follow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := r.db.Rebind(`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`)
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM follows WHERE follower_id = ? AND followee_id = ?`)
	var n int
	err := r.db.GetContext(ctx, &n, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("failed to check follow existence: %w", err)
	}
	return n > 0, nil
}

// GetFollowers returns the users following userID, most recent first.
func (r *followRepository) GetFollowers(ctx context.Context, userID string) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.full_name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = ?
		ORDER BY f.created_at DESC
	`)

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	return users, nil
}

// GetFollowing returns the users userID follows, most recent first.
func (r *followRepository) GetFollowing(ctx context.Context, userID string) ([]model.UserSummary, error) {
	query := r.db.Rebind(`
		SELECT u.id, u.username, u.full_name, u.avatar
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = ?
		ORDER BY f.created_at DESC
	`)

	users := []model.UserSummary{}
	if err := r.db.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	return users, nil
}
