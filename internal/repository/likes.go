package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// likeTable describes a likeable entity and its liker set.
type likeTable struct {
	target   string // entity table holding likes_count
	likes    string // join table holding (fk, user_id)
	fk       string
	notFound error
}

// lock takes the row lock on the target for the rest of tx. The no-op UPDATE
// works on both PostgreSQL and SQLite, unlike SELECT ... FOR UPDATE.
func (t likeTable) lock(ctx context.Context, tx *sqlx.Tx, id string) error {
	query := tx.Rebind(fmt.Sprintf(`UPDATE %s SET likes_count = likes_count WHERE id = ?`, t.target))
	result, err := tx.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("lock %s: %w", t.target, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return t.notFound
	}
	return nil
}

// add inserts the liker and reports whether the pair was new.
func (t likeTable) add(ctx context.Context, tx *sqlx.Tx, id, userID string) (bool, error) {
	query := tx.Rebind(fmt.Sprintf(`
		INSERT INTO %s (%s, user_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (%s, user_id) DO NOTHING
	`, t.likes, t.fk, t.fk))
	result, err := tx.ExecContext(ctx, query, id, userID, now())
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// remove deletes the liker and reports whether a row was removed.
func (t likeTable) remove(ctx context.Context, tx *sqlx.Tx, id, userID string) (bool, error) {
	query := tx.Rebind(fmt.Sprintf(`DELETE FROM %s WHERE %s = ? AND user_id = ?`, t.likes, t.fk))
	result, err := tx.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// increment applies delta to likes_count, clamped at zero, and returns the new value.
func (t likeTable) increment(ctx context.Context, tx *sqlx.Tx, id string, delta int) (int, error) {
	query := tx.Rebind(fmt.Sprintf(`
		UPDATE %s
		SET likes_count = CASE WHEN likes_count + ? < 0 THEN 0 ELSE likes_count + ? END
		WHERE id = ?
		RETURNING likes_count
	`, t.target))
	var count int
	if err := tx.GetContext(ctx, &count, query, delta, delta, id); err != nil {
		return 0, fmt.Errorf("update like count: %w", err)
	}
	return count, nil
}

// likers returns the liker ids of each target, oldest like first.
func (t likeTable) likers(ctx context.Context, q queryer, ids []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	type row struct {
		TargetID string `db:"target_id"`
		UserID   string `db:"user_id"`
	}
	query := fmt.Sprintf(`
		SELECT %s AS target_id, user_id
		FROM %s
		WHERE %s IN (?)
		ORDER BY created_at, user_id
	`, t.fk, t.likes, t.fk)

	var rows []row
	if err := selectIn(ctx, q, &rows, query, ids); err != nil {
		return nil, fmt.Errorf("get likers: %w", err)
	}
	for _, r := range rows {
		result[r.TargetID] = append(result[r.TargetID], r.UserID)
	}
	return result, nil
}
