package numbering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Store reads the highest committed number carrying prefix, "" when none exists.
type Store interface {
	LatestNumber(ctx context.Context, series Series, prefix string) (string, error)
}

// Next computes the next number of series for date. It must run inside the
// transaction that inserts the document.
func Next(ctx context.Context, store Store, series Series, date time.Time) (string, error) {
	last, err := store.LatestNumber(ctx, series, series.Prefix(date))
	if err != nil {
		return "", fmt.Errorf("numbering: latest %s: %w", series.Code, err)
	}
	return series.Increment(date, last)
}

// Querier is satisfied by pgx.Tx, pgxpool.Pool and pgx.Conn.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore looks numbers up in PostgreSQL.
type PGStore struct {
	DB Querier
}

// LatestNumber orders by length first so that 10000 sorts above 9999.
func (s PGStore) LatestNumber(ctx context.Context, series Series, prefix string) (string, error) {
	query := fmt.Sprintf(`SELECT number FROM %s WHERE number LIKE $1 ORDER BY length(number) DESC, number DESC LIMIT 1`, pgx.Identifier{series.Table}.Sanitize())
	var number string
	err := s.DB.QueryRow(ctx, query, prefix+"%").Scan(&number)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return number, nil
}
