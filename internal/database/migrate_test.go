package database

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialnet/internal/config"
	"socialnet/internal/model"
)

func TestMigrateExecutesAllStatements(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock new: %v", err)
			}
			defer db.Close()

			stmts, err := Statements(driver)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)

			for range stmts {
				mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
			}

			if err := Migrate(context.Background(), db, driver); err != nil {
				t.Fatalf("migrate: %v", err)
			}

			if err := mock.ExpectationsWereMet(); err != nil {
				t.Fatalf("expectations: %v", err)
			}
		})
	}
}

func TestMigrateStopsOnFirstError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	boom := errors.New("syntax error")
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(".*").WillReturnError(boom)

	err = Migrate(context.Background(), db, config.DriverPostgres)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "statement 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatementsUnknownDriver(t *testing.T) {
	_, err := Statements("mysql")
	assert.Error(t, err)
}

func TestSchemasDeclareSameTables(t *testing.T) {
	pg, err := Statements(config.DriverPostgres)
	require.NoError(t, err)
	lite, err := Statements(config.DriverSQLite)
	require.NoError(t, err)

	assert.Equal(t, len(pg), len(lite))
}

// Escaped user text can be several times longer than what the client typed,
// so a bounded column must hold the worst case.
func TestPostgresUserColumnsFitEscapedText(t *testing.T) {
	stmts, err := Statements(config.DriverPostgres)
	require.NoError(t, err)

	var users string
	for _, stmt := range stmts {
		if strings.Contains(stmt, "CREATE TABLE IF NOT EXISTS users") {
			users = stmt
		}
	}
	require.NotEmpty(t, users)

	tests := []struct {
		column   string
		maxRunes int
	}{
		{column: "full_name", maxRunes: 100},
		{column: "bio", maxRunes: 500},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			require.Contains(t, users, tt.column)
			stored := model.EscapeHTML(strings.Repeat("'", tt.maxRunes))
			m := regexp.MustCompile(`(?m)^\s*` + tt.column + `\s+VARCHAR\((\d+)\)`).FindStringSubmatch(users)
			if m == nil {
				return
			}
			limit, err := strconv.Atoi(m[1])
			require.NoError(t, err)
			assert.LessOrEqual(t, utf8.RuneCountInString(stored), limit)
		})
	}
}

func TestMigrateSQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))
	// Second run is a no-op.
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))

	var n int
	require.NoError(t, db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('users','posts','comments','tags','follows','post_likes','post_tags','comment_likes')`))
	assert.Equal(t, 8, n)
}

func TestIsUniqueViolationSQLite(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, config.DriverSQLite))

	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES ('1', 'music')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO tags (id, name) VALUES ('2', 'music')`)
	require.Error(t, err)

	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}
