package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == PgErrorCodeUniqueViolation
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

func fromSeconds(s int64) time.Duration {
	return time.Duration(s) * time.Second
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// txBase carries the pgx transaction shared by every repository transaction type
type txBase struct {
	tx pgx.Tx
}

// Commit commits the transaction
func (t *txBase) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *txBase) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
