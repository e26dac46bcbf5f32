package bills

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository defines bill data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Bill, error)
	List(ctx context.Context, filter ListFilter) ([]Bill, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	numbering.Store
	Insert(ctx context.Context, bill Bill) (int64, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	LockStatus(ctx context.Context, id int64) (Status, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	// LockOrderStatus re-reads the source order status under a row lock.
	LockOrderStatus(ctx context.Context, orderID int64) (orders.Status, error)
	SetOrderStatus(ctx context.Context, orderID int64, status orders.Status) error
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

// NewRepository builds the PostgreSQL bill repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

func (r *repository) LatestNumber(ctx context.Context, series numbering.Series, prefix string) (string, error) {
	return numbering.PGStore{DB: r.db}.LatestNumber(ctx, series, prefix)
}

const billSelect = `
	SELECT b.id, b.direction, b.number, b.bill_date, b.due_date, b.partner_id, p.name,
	       b.source_order_id, b.reference, b.untaxed, b.tax_amount, b.total, b.status,
	       b.created_at, b.updated_at
	FROM bills b
	JOIN partners p ON p.id = b.partner_id`

func scanBill(row pgx.Row) (Bill, error) {
	var b Bill
	err := row.Scan(&b.ID, &b.Direction, &b.Number, &b.BillDate, &b.DueDate, &b.PartnerID, &b.PartnerName,
		&b.SourceOrderID, &b.Reference, &b.Untaxed, &b.TaxAmount, &b.Total, &b.Status,
		&b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Bill, error) {
	b, err := scanBill(r.db.QueryRow(ctx, billSelect+` WHERE b.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFound("bill", id)
	}
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.bill_id, l.product_id, pr.name, l.account_id, a.name, l.tax_id, l.description,
		       l.quantity, l.unit_price, l.tax_rate, l.untaxed, l.tax_amount, l.total, l.line_order
		FROM bill_lines l
		JOIN products pr ON pr.id = l.product_id
		JOIN accounts a ON a.id = l.account_id
		WHERE l.bill_id = $1
		ORDER BY l.line_order, l.id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.BillID, &l.ProductID, &l.ProductName, &l.AccountID, &l.AccountName, &l.TaxID,
			&l.Description, &l.Quantity, &l.UnitPrice, &l.TaxRate, &l.Untaxed, &l.TaxAmount, &l.Total, &l.LineOrder); err != nil {
			return nil, err
		}
		b.Lines = append(b.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Bill, error) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.Direction != "" {
		add("b.direction = $%d", filter.Direction)
	}
	if filter.PartnerID != 0 {
		add("b.partner_id = $%d", filter.PartnerID)
	}
	if filter.Status != "" {
		add("b.status = $%d", filter.Status)
	}
	if !filter.From.IsZero() {
		add("b.bill_date >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		add("b.bill_date <= $%d", filter.To)
	}
	query := billSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	page := shared.NewPagination(filter.Limit, filter.Offset)
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY b.bill_date DESC, b.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repository) Insert(ctx context.Context, b Bill) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bills (direction, number, bill_date, due_date, partner_id, source_order_id, reference,
		                   untaxed, tax_amount, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		b.Direction, b.Number, b.BillDate, b.DueDate, b.PartnerID, b.SourceOrderID, b.Reference,
		b.Untaxed, b.TaxAmount, b.Total, b.Status,
	).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bill_lines (bill_id, product_id, account_id, tax_id, description, quantity, unit_price,
		                        tax_rate, untaxed, tax_amount, total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		l.BillID, l.ProductID, l.AccountID, l.TaxID, l.Description, l.Quantity, l.UnitPrice,
		l.TaxRate, l.Untaxed, l.TaxAmount, l.Total, l.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (r *repository) LockStatus(ctx context.Context, id int64) (Status, error) {
	var status Status
	err := r.db.QueryRow(ctx, `SELECT status FROM bills WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.NotFound("bill", id)
	}
	return status, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE bills SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("bill", id)
	}
	return nil
}

func (r *repository) LockOrderStatus(ctx context.Context, orderID int64) (orders.Status, error) {
	var status orders.Status
	err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.NotFound("order", orderID)
	}
	return status, err
}

func (r *repository) SetOrderStatus(ctx context.Context, orderID int64, status orders.Status) error {
	_, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	return err
}
