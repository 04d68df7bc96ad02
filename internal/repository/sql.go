package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// builder returns a squirrel statement builder using the placeholder style of the driver.
func builder(db *sqlx.DB) sq.StatementBuilderType {
	if db.DriverName() == "postgres" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// queryer is implemented by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// selectIn runs a query containing an IN (?) clause expanded with sqlx.In.
func selectIn(ctx context.Context, q queryer, dest interface{}, query string, args ...interface{}) error {
	expanded, inArgs, err := sqlx.In(query, args...)
	if err != nil {
		return err
	}
	return q.SelectContext(ctx, dest, q.Rebind(expanded), inArgs...)
}

func now() time.Time {
	return time.Now().UTC()
}
