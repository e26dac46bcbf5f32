package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository defines payment data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, error)
	Bill(ctx context.Context, id int64) (BillRef, error)
}

// TxRepository defines operations within a settlement transaction.
type TxRepository interface {
	numbering.Store
	// LockBill reads the bill under a row lock held until commit.
	LockBill(ctx context.Context, id int64) (BillRef, error)
	MarkBillPaid(ctx context.Context, id int64) error
	Insert(ctx context.Context, payment Payment) (int64, error)
	AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error
}

type dbtx interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

var (
	_ Repository   = (*repository)(nil)
	_ TxRepository = (*repository)(nil)
)

// NewRepository builds the PostgreSQL payment repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

// WithTx runs fn under READ COMMITTED. Settlements serialise on the bill row lock.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTxOptions(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) LatestNumber(ctx context.Context, series numbering.Series, prefix string) (string, error) {
	return numbering.PGStore{DB: r.db}.LatestNumber(ctx, series, prefix)
}

const paymentSelect = `
	SELECT pm.id, pm.number, pm.type, pm.amount, pm.payment_date, pm.partner_id, p.name,
	       pm.bill_id, b.number, pm.account_id, a.name, pm.note, pm.created_at
	FROM payments pm
	JOIN partners p ON p.id = pm.partner_id
	JOIN bills b ON b.id = pm.bill_id
	JOIN accounts a ON a.id = pm.account_id`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.Number, &p.Type, &p.Amount, &p.PaymentDate, &p.PartnerID, &p.PartnerName,
		&p.BillID, &p.BillNumber, &p.AccountID, &p.AccountName, &p.Note, &p.CreatedAt)
	return p, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Payment, error) {
	p, err := scanPayment(r.db.QueryRow(ctx, paymentSelect+` WHERE pm.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFound("payment", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.Type != "" {
		add("pm.type = $%d", filter.Type)
	}
	if filter.PartnerID != 0 {
		add("pm.partner_id = $%d", filter.PartnerID)
	}
	if !filter.From.IsZero() {
		add("pm.payment_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("pm.payment_date <= $%d", filter.To)
	}
	query := paymentSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	page := shared.NewPagination(filter.Limit, filter.Offset)
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY pm.payment_date DESC, pm.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) bill(ctx context.Context, query string, id int64) (BillRef, error) {
	var b BillRef
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Direction, &b.Number, &b.PartnerID, &b.Total, &b.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return BillRef{}, shared.NotFound("bill", id)
	}
	return b, err
}

func (r *repository) Bill(ctx context.Context, id int64) (BillRef, error) {
	return r.bill(ctx, `SELECT id, direction, number, partner_id, total, status FROM bills WHERE id = $1`, id)
}

func (r *repository) LockBill(ctx context.Context, id int64) (BillRef, error) {
	return r.bill(ctx, `SELECT id, direction, number, partner_id, total, status FROM bills WHERE id = $1 FOR UPDATE`, id)
}

func (r *repository) MarkBillPaid(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE bills SET status = 'paid', updated_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *repository) Insert(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (number, type, amount, payment_date, partner_id, bill_id, account_id, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		p.Number, p.Type, p.Amount, p.PaymentDate, p.PartnerID, p.BillID, p.AccountID, p.Note,
	).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (r *repository) AdjustBalance(ctx context.Context, accountID int64, delta decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, `UPDATE accounts SET current_balance = current_balance + $1 WHERE id = $2`, delta, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("account", accountID)
	}
	return nil
}
