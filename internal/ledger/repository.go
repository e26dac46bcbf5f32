package ledger

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter narrows the ledger to one partner when PartnerID is set.
type Filter struct {
	PartnerID int64
}

// Repository loads ledger sources.
type Repository interface {
	Bills(ctx context.Context, filter Filter) ([]Source, error)
	Payments(ctx context.Context, filter Filter) ([]Source, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL ledger repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Bills loads every non-cancelled bill.
func (r *repository) Bills(ctx context.Context, filter Filter) ([]Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.partner_id, p.name, p.role, b.direction = 'vendor', b.number, b.bill_date, b.due_date, b.total
		FROM bills b
		JOIN partners p ON p.id = b.partner_id
		WHERE b.status <> 'cancelled' AND ($1::bigint = 0 OR b.partner_id = $1)`, filter.PartnerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, KindBill, true)
}

// Payments loads every payment.
func (r *repository) Payments(ctx context.Context, filter Filter) ([]Source, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pm.partner_id, p.name, p.role, pm.type = 'send', pm.number, pm.payment_date, NULL::date, pm.amount
		FROM payments pm
		JOIN partners p ON p.id = pm.partner_id
		WHERE ($1::bigint = 0 OR pm.partner_id = $1)`, filter.PartnerID)
	if err != nil {
		return nil, err
	}
	return collect(rows, KindPayment, false)
}

func collect(rows pgx.Rows, kind Kind, withDue bool) ([]Source, error) {
	defer rows.Close()
	var out []Source
	for rows.Next() {
		s := Source{Kind: kind}
		if err := rows.Scan(&s.PartnerID, &s.PartnerName, &s.PartnerRole, &s.Vendor, &s.Number, &s.Date, &s.DueDate, &s.Amount); err != nil {
			return nil, err
		}
		if !withDue {
			s.DueDate = nil
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
