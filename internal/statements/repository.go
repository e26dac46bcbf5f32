package statements

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Period bounds a report by document date. Zero values are open ends.
type Period struct {
	From time.Time
	To   time.Time
}

// Repository reads the aggregates the statements need.
type Repository interface {
	PaymentTotals(ctx context.Context, period Period) (PaymentTotals, error)
	BillTotals(ctx context.Context) (BillTotals, error)
	CashAndBank(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL statements repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (r *repository) PaymentTotals(ctx context.Context, period Period) (PaymentTotals, error) {
	var out PaymentTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount) FILTER (WHERE type = 'receive'), 0),
		       COALESCE(SUM(amount) FILTER (WHERE type = 'send'), 0)
		FROM payments
		WHERE ($1::date IS NULL OR payment_date >= $1)
		  AND ($2::date IS NULL OR payment_date <= $2)`,
		nullableDate(period.From), nullableDate(period.To),
	).Scan(&out.Received, &out.Sent)
	return out, err
}

func (r *repository) BillTotals(ctx context.Context) (BillTotals, error) {
	var out BillTotals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total) FILTER (WHERE direction = 'sales' AND status = 'posted'), 0),
		       COALESCE(SUM(total) FILTER (WHERE direction = 'vendor' AND status = 'posted'), 0),
		       COALESCE(SUM(total) FILTER (WHERE direction = 'sales'), 0),
		       COALESCE(SUM(total) FILTER (WHERE direction = 'vendor'), 0)
		FROM bills
		WHERE status IN ('posted', 'paid')`,
	).Scan(&out.OpenSales, &out.OpenVendor, &out.AllSales, &out.AllVendor)
	return out, err
}

func (r *repository) CashAndBank(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(current_balance), 0) FROM accounts WHERE type = 'Assets'`).Scan(&total)
	return total, err
}
