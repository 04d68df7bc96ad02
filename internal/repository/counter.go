package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Counter names reported by Reconcile.
const (
	CounterPostLikes    = "post_likes"
	CounterPostComments = "post_comments"
	CounterCommentLikes = "comment_likes"
	CounterUserPosts    = "user_posts"
)

// counterColumn is a denormalized count and the correlated subquery that recomputes it.
type counterColumn struct {
	name   string
	table  string
	column string
	count  string
}

var counterColumns = []counterColumn{
	{CounterPostLikes, "posts", "likes_count", `(SELECT COUNT(*) FROM post_likes pl WHERE pl.post_id = posts.id)`},
	{CounterPostComments, "posts", "comments_count", `(SELECT COUNT(*) FROM comments c WHERE c.post_id = posts.id)`},
	{CounterCommentLikes, "comments", "likes_count", `(SELECT COUNT(*) FROM comment_likes cl WHERE cl.comment_id = comments.id)`},
	{CounterUserPosts, "users", "posts_count", `(SELECT COUNT(*) FROM posts p WHERE p.author_id = users.id)`},
}

type counterRepository struct {
	db *sqlx.DB
}

func NewCounterRepository(db *sqlx.DB) CounterRepository {
	return &counterRepository{db: db}
}

// Reconcile corrects every drifted counter and returns the number of
// corrected rows per counter. Each row is fixed in its own transaction.
func (r *counterRepository) Reconcile(ctx context.Context) (map[string]int64, error) {
	corrected := make(map[string]int64, len(counterColumns))
	for _, c := range counterColumns {
		ids, err := r.driftedIDs(ctx, c)
		if err != nil {
			return nil, err
		}
		var n int64
		for _, id := range ids {
			fixed, err := r.correct(ctx, c, id)
			if err != nil {
				return nil, err
			}
			if fixed {
				n++
			}
		}
		corrected[c.name] = n
	}
	return corrected, nil
}

func (r *counterRepository) driftedIDs(ctx context.Context, c counterColumn) ([]string, error) {
	query := fmt.Sprintf(`SELECT id FROM %s WHERE %s <> %s`, c.table, c.column, c.count)
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("find drifted %s: %w", c.name, err)
	}
	return ids, nil
}

// correct locks the row before recounting. Writers hold the same row lock
// while they change the rows behind the counter, so the recount runs after
// they commit and sees their rows. It reports false when there was nothing
// left to fix.
func (r *counterRepository) correct(ctx context.Context, c counterColumn, id string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := tx.Rebind(fmt.Sprintf(`UPDATE %s SET %s = %s WHERE id = ?`, c.table, c.column, c.column))
	if _, err := tx.ExecContext(ctx, lock, id); err != nil {
		return false, fmt.Errorf("lock %s: %w", c.name, err)
	}

	update := tx.Rebind(fmt.Sprintf(`UPDATE %[1]s SET %[2]s = %[3]s WHERE id = ? AND %[2]s <> %[3]s`, c.table, c.column, c.count))
	result, err := tx.ExecContext(ctx, update, id)
	if err != nil {
		return false, fmt.Errorf("reconcile %s: %w", c.name, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}
	return n > 0, nil
}
