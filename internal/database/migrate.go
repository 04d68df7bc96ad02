package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"socialnet/internal/config"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Execer is satisfied by *sql.DB, *sqlx.DB and their transactions.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Statements returns the schema statements for the given driver in apply order.
func Statements(driver string) ([]string, error) {
	var file string
	switch driver {
	case config.DriverPostgres:
		file = "schema/postgres.sql"
	case config.DriverSQLite:
		file = "schema/sqlite.sql"
	default:
		return nil, fmt.Errorf("no schema for driver %q", driver)
	}

	raw, err := schemaFS.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	var stmts []string
	for _, part := range strings.Split(string(raw), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db Execer, driver string) error {
	stmts, err := Statements(driver)
	if err != nil {
		return err
	}
	for i, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
