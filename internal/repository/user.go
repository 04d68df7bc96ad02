package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"socialnet/internal/database"
	"socialnet/internal/model"
)

const userColumns = `id, username, email, password_hash, full_name, bio, avatar, posts_count, created_at, updated_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	ts := now()
	u.CreatedAt = ts
	u.UpdatedAt = ts

	query := r.db.Rebind(`
		INSERT INTO users (id, username, email, password_hash, full_name, bio, avatar, posts_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.FullName,
		u.Bio,
		u.Avatar,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "email") {
				return model.ErrEmailExists
			}
			return model.ErrUsernameExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByEmail retrieves a user by their email, case-insensitively
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ?`)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &u, nil
}

// ExistsByUsername checks if a username is taken by anyone other than excludeID
func (r *userRepository) ExistsByUsername(ctx context.Context, username, excludeID string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? AND id <> ?`)

	var n int
	err := r.db.GetContext(ctx, &n, query, username, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return n > 0, nil
}

// ExistsByEmail checks if an email is already registered
func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`)

	var n int
	err := r.db.GetContext(ctx, &n, query, strings.ToLower(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}

	return n > 0, nil
}

// GetSummaries resolves user ids to display summaries in one query.
func (r *userRepository) GetSummaries(ctx context.Context, ids []string) (map[string]model.UserSummary, error) {
	result := make(map[string]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var users []model.UserSummary
	err := selectIn(ctx, r.db, &users, `SELECT id, username, full_name, avatar FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}
	for _, u := range users {
		result[u.ID] = u
	}
	return result, nil
}

// Search matches the raw query as a case-insensitive substring of username or
// full name. Full names are compared with their HTML entities decoded.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]model.UserSummary, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	searchQuery := r.db.Rebind(`
		SELECT id, username, full_name, avatar
		FROM users
		WHERE LOWER(username) LIKE ? ESCAPE '\' OR ` + plainFullName + ` LIKE ? ESCAPE '\'
		ORDER BY username
		LIMIT ?
	`)

	users := []model.UserSummary{}
	err := r.db.SelectContext(ctx, &users, searchQuery, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// Update builds the SET clause from the fields present in req.
func (r *userRepository) Update(ctx context.Context, id string, req model.UpdateProfileRequest) error {
	qb := builder(r.db).Update("users").Set("updated_at", now()).Where("id = ?", id)
	if req.Username != nil {
		qb = qb.Set("username", *req.Username)
	}
	if req.FullName != nil {
		qb = qb.Set("full_name", *req.FullName)
	}
	if req.Bio != nil {
		qb = qb.Set("bio", *req.Bio)
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("build profile update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return model.ErrUsernameExists
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, id, avatar string) error {
	query := r.db.Rebind(`UPDATE users SET avatar = ?, updated_at = ? WHERE id = ?`)
	result, err := r.db.ExecContext(ctx, query, avatar, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// IncrementPostsCount applies delta to posts_count, clamped at zero.
func (r *userRepository) IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID string, delta int) error {
	query := tx.Rebind(`
		UPDATE users
		SET posts_count = CASE WHEN posts_count + ? < 0 THEN 0 ELSE posts_count + ? END
		WHERE id = ?
	`)
	result, err := tx.ExecContext(ctx, query, delta, delta, userID)
	if err != nil {
		return fmt.Errorf("failed to increment posts count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// plainFullName lowercases full_name and undoes model.EscapeHTML, decoding
// "&amp;" last so an escaped entity is not decoded twice.
var plainFullName = func() string {
	expr := "LOWER(full_name)"
	entities := model.HTMLEntities()
	for i := len(entities) - 1; i >= 0; i-- {
		char := strings.ReplaceAll(entities[i][0], "'", "''")
		expr = fmt.Sprintf("REPLACE(%s, '%s', '%s')", expr, strings.ToLower(entities[i][1]), char)
	}
	return expr
}()

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
