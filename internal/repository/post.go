package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

var postLikes = likeTable{
	target:   "posts",
	likes:    "post_likes",
	fk:       "post_id",
	notFound: model.ErrPostNotFound,
}

const postSelect = `
	SELECT p.id, p.author_id, p.content, p.image, p.likes_count, p.comments_count, p.created_at, p.updated_at,
	       u.id AS "author.id", u.username AS "author.username",
	       u.full_name AS "author.full_name", u.avatar AS "author.avatar"
	FROM posts p
	JOIN users u ON u.id = p.author_id
`

// postRow scans a post joined with its author summary.
type postRow struct {
	model.Post
	Author model.UserSummary `db:"author"`
}

func (row postRow) toPost() model.Post {
	p := row.Post
	author := row.Author
	p.Author = &author
	return p
}

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post. Timestamps are set here when the caller left them zero.
func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now()
	}
	post.UpdatedAt = post.CreatedAt

	query := tx.Rebind(`
		INSERT INTO posts (id, author_id, content, image, likes_count, comments_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?)
	`)
	_, err := tx.ExecContext(ctx, query, post.ID, post.AuthorID, post.Content, post.Image, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// AddTags links tags to a post. Duplicate links are ignored.
func (r *postRepository) AddTags(ctx context.Context, tx *sqlx.Tx, postID string, tagIDs []string) error {
	query := tx.Rebind(`INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?) ON CONFLICT (post_id, tag_id) DO NOTHING`)
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx, query, postID, tagID); err != nil {
			return fmt.Errorf("insert post tag %s: %w", tagID, err)
		}
	}
	return nil
}

// GetByID retrieves a single post with its author.
func (r *postRepository) GetByID(ctx context.Context, postID string) (*model.Post, error) {
	return r.getByID(ctx, r.db, postID)
}

// GetForUpdate locks the post row, then reads it inside tx.
func (r *postRepository) GetForUpdate(ctx context.Context, tx *sqlx.Tx, postID string) (*model.Post, error) {
	if err := postLikes.lock(ctx, tx, postID); err != nil {
		return nil, err
	}
	return r.getByID(ctx, tx, postID)
}

func (r *postRepository) getByID(ctx context.Context, q queryer, postID string) (*model.Post, error) {
	var row postRow
	err := q.GetContext(ctx, &row, q.Rebind(postSelect+` WHERE p.id = ?`), postID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	post := row.toPost()
	return &post, nil
}

// Update writes the editable fields of a post.
func (r *postRepository) Update(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	post.UpdatedAt = now()
	query := tx.Rebind(`UPDATE posts SET content = ?, image = ?, updated_at = ? WHERE id = ?`)
	result, err := tx.ExecContext(ctx, query, post.Content, post.Image, post.UpdatedAt, post.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// Delete removes the post and everything that hangs off it.
func (r *postRepository) Delete(ctx context.Context, tx *sqlx.Tx, postID string) error {
	cascade := []string{
		`DELETE FROM comment_likes WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)`,
		`DELETE FROM comments WHERE post_id = ?`,
		`DELETE FROM post_likes WHERE post_id = ?`,
		`DELETE FROM post_tags WHERE post_id = ?`,
	}
	for _, stmt := range cascade {
		if _, err := tx.ExecContext(ctx, tx.Rebind(stmt), postID); err != nil {
			return fmt.Errorf("delete post dependents: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// List returns one page of posts, newest first, plus the total matching count.
// A zero page limit returns every matching post.
func (r *postRepository) List(ctx context.Context, filter PostFilter, page model.Page) ([]model.Post, int, error) {
	var where sq.Sqlizer
	if filter.AuthorID != "" {
		where = sq.Eq{"p.author_id": filter.AuthorID}
	}

	countQB := builder(r.db).Select("COUNT(*)").From("posts p")
	listQB := builder(r.db).
		Select(
			"p.id", "p.author_id", "p.content", "p.image", "p.likes_count", "p.comments_count", "p.created_at", "p.updated_at",
			`u.id AS "author.id"`, `u.username AS "author.username"`,
			`u.full_name AS "author.full_name"`, `u.avatar AS "author.avatar"`,
		).
		From("posts p").
		Join("users u ON u.id = p.author_id").
		OrderBy("p.created_at DESC", "p.id DESC")
	if page.Limit > 0 {
		listQB = listQB.Limit(uint64(page.Limit)).Offset(uint64(page.Offset()))
	}
	if where != nil {
		countQB = countQB.Where(where)
		listQB = listQB.Where(where)
	}

	countSQL, countArgs, err := countQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count posts: %w", err)
	}

	listSQL, listArgs, err := listQB.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list query: %w", err)
	}
	var rows []postRow
	if err := r.db.SelectContext(ctx, &rows, listSQL, listArgs...); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.toPost()
	}
	return posts, total, nil
}

// GetLikers returns liker ids per post.
func (r *postRepository) GetLikers(ctx context.Context, postIDs []string) (map[string][]string, error) {
	return postLikes.likers(ctx, r.db, postIDs)
}

// GetTags returns the tags of each post, alphabetically.
func (r *postRepository) GetTags(ctx context.Context, postIDs []string) (map[string][]model.Tag, error) {
	result := make(map[string][]model.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	type row struct {
		PostID string `db:"post_id"`
		model.Tag
	}
	var rows []row
	err := selectIn(ctx, r.db, &rows, `
		SELECT pt.post_id, t.id, t.name
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id IN (?)
		ORDER BY t.name
	`, postIDs)
	if err != nil {
		return nil, fmt.Errorf("get post tags: %w", err)
	}
	for _, r := range rows {
		result[r.PostID] = append(result[r.PostID], r.Tag)
	}
	return result, nil
}

func (r *postRepository) LockForUpdate(ctx context.Context, tx *sqlx.Tx, postID string) error {
	return postLikes.lock(ctx, tx, postID)
}

func (r *postRepository) AddLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error) {
	return postLikes.add(ctx, tx, postID, userID)
}

func (r *postRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, postID, userID string) (bool, error) {
	return postLikes.remove(ctx, tx, postID, userID)
}

// IncrementLikeCount atomically updates likes_count and returns the new value.
func (r *postRepository) IncrementLikeCount(ctx context.Context, tx *sqlx.Tx, postID string, delta int) (int, error) {
	return postLikes.increment(ctx, tx, postID, delta)
}

// IncrementCommentCount atomically updates comments_count, clamped at zero.
func (r *postRepository) IncrementCommentCount(ctx context.Context, tx *sqlx.Tx, postID string, delta int) error {
	query := tx.Rebind(`
		UPDATE posts
		SET comments_count = CASE WHEN comments_count + ? < 0 THEN 0 ELSE comments_count + ? END
		WHERE id = ?
	`)
	result, err := tx.ExecContext(ctx, query, delta, delta, postID)
	if err != nil {
		return fmt.Errorf("update comment count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
