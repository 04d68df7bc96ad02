package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"socialnet/internal/model"
)

type tagRepository struct {
	db *sqlx.DB
}

func NewTagRepository(db *sqlx.DB) TagRepository {
	return &tagRepository{db: db}
}

// List returns every tag sorted by name.
func (r *tagRepository) List(ctx context.Context) ([]model.Tag, error) {
	tags := []model.Tag{}
	if err := r.db.SelectContext(ctx, &tags, `SELECT id, name FROM tags ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// GetByIDs returns the tags that exist among ids. Missing ids are simply absent.
func (r *tagRepository) GetByIDs(ctx context.Context, tx *sqlx.Tx, ids []string) ([]model.Tag, error) {
	tags := []model.Tag{}
	if len(ids) == 0 {
		return tags, nil
	}
	if err := selectIn(ctx, tx, &tags, `SELECT id, name FROM tags WHERE id IN (?) ORDER BY name`, ids); err != nil {
		return nil, fmt.Errorf("get tags: %w", err)
	}
	return tags, nil
}

func (r *tagRepository) Upsert(ctx context.Context, names []string) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := tx.Rebind(`INSERT INTO tags (id, name) VALUES (?, ?) ON CONFLICT (name) DO NOTHING`)
	inserted := 0
	for _, name := range names {
		result, err := tx.ExecContext(ctx, query, uuid.NewString(), name)
		if err != nil {
			return 0, fmt.Errorf("insert tag %q: %w", name, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("get rows affected: %w", err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return inserted, nil
}
