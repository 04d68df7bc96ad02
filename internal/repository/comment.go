package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

var commentLikes = likeTable{
	target:   "comments",
	likes:    "comment_likes",
	fk:       "comment_id",
	notFound: model.ErrCommentNotFound,
}

const commentSelect = `
	SELECT c.id, c.post_id, c.author_id, c.content, c.likes_count, c.created_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.full_name AS "author.full_name", u.avatar AS "author.avatar"
	FROM comments c
	JOIN users u ON u.id = c.author_id
`

// commentRow scans a comment joined with its author summary.
type commentRow struct {
	model.Comment
	Author model.UserSummary `db:"author"`
}

func (row commentRow) toComment() model.Comment {
	c := row.Comment
	author := row.Author
	c.Author = &author
	return c
}

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. The caller pairs it with the post counter update in tx.
func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now()
	}
	query := tx.Rebind(`
		INSERT INTO comments (id, post_id, author_id, content, likes_count, created_at)
		VALUES (?, ?, ?, ?, 0, ?)
	`)
	_, err := tx.ExecContext(ctx, query, comment.ID, comment.PostID, comment.AuthorID, comment.Content, comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, commentID string) (*model.Comment, error) {
	var row commentRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(commentSelect+` WHERE c.id = ?`), commentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	c := row.toComment()
	return &c, nil
}

// Delete removes a comment and its likes inside tx.
func (r *commentRepository) Delete(ctx context.Context, tx *sqlx.Tx, commentID string) (bool, error) {
	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comment_likes WHERE comment_id = ?`), commentID); err != nil {
		return false, fmt.Errorf("delete comment likes: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM comments WHERE id = ?`), commentID)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListByPost returns all comments of a post with their authors.
func (r *commentRepository) ListByPost(ctx context.Context, postID string, newestFirst bool) ([]model.Comment, error) {
	order := ` ORDER BY c.created_at ASC, c.id ASC`
	if newestFirst {
		order = ` ORDER BY c.created_at DESC, c.id DESC`
	}

	var rows []commentRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(commentSelect+` WHERE c.post_id = ?`+order), postID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

func (r *commentRepository) GetLikers(ctx context.Context, commentIDs []string) (map[string][]string, error) {
	return commentLikes.likers(ctx, r.db, commentIDs)
}

func (r *commentRepository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, commentID string) error {
	return commentLikes.lock(ctx, tx, commentID)
}

func (r *commentRepository) AddLike(ctx context.Context, tx *sqlx.Tx, commentID, userID string) (bool, error) {
	return commentLikes.add(ctx, tx, commentID, userID)
}

func (r *commentRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID, userID string) (bool, error) {
	return commentLikes.remove(ctx, tx, commentID, userID)
}

func (r *commentRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, commentID string, delta int) (int, error) {
	return commentLikes.increment(ctx, tx, commentID, delta)
}
