package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository defines order data access.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context, filter ListFilter) ([]Order, error)
}

// TxRepository defines operations within a transaction.
type TxRepository interface {
	numbering.Store
	Insert(ctx context.Context, order Order) (int64, error)
	InsertLine(ctx context.Context, line Line) (int64, error)
	// LockStatus reads the order status and holds a row lock until commit.
	LockStatus(ctx context.Context, id int64) (Status, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
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

// NewRepository builds the PostgreSQL order repository.
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

const orderSelect = `
	SELECT o.id, o.kind, o.number, o.order_date, o.partner_id, p.name, o.reference,
	       o.untaxed, o.tax_amount, o.total, o.status, o.created_at, o.updated_at
	FROM orders o
	JOIN partners p ON p.id = o.partner_id`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.Kind, &o.Number, &o.OrderDate, &o.PartnerID, &o.PartnerName, &o.Reference,
		&o.Untaxed, &o.TaxAmount, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (r *repository) Get(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, orderSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.NotFound("order", id)
	}
	if err != nil {
		return nil, err
	}
	lines, err := r.lines(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *repository) lines(ctx context.Context, orderID int64) ([]Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT l.id, l.order_id, l.product_id, pr.name, l.tax_id, l.description,
		       l.quantity, l.unit_price, l.tax_rate, l.untaxed, l.tax_amount, l.total, l.line_order
		FROM order_lines l
		JOIN products pr ON pr.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.line_order, l.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.ProductName, &l.TaxID, &l.Description,
			&l.Quantity, &l.UnitPrice, &l.TaxRate, &l.Untaxed, &l.TaxAmount, &l.Total, &l.LineOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	var conditions []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}
	if filter.Kind != "" {
		add("o.kind = $%d", filter.Kind)
	}
	if filter.PartnerID != 0 {
		add("o.partner_id = $%d", filter.PartnerID)
	}
	if filter.Status != "" {
		add("o.status = $%d", filter.Status)
	}
	query := orderSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	page := shared.NewPagination(filter.Limit, filter.Offset)
	args = append(args, page.Limit, page.Offset)
	query += fmt.Sprintf(" ORDER BY o.order_date DESC, o.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) Insert(ctx context.Context, o Order) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (kind, number, order_date, partner_id, reference, untaxed, tax_amount, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		o.Kind, o.Number, o.OrderDate, o.PartnerID, o.Reference, o.Untaxed, o.TaxAmount, o.Total, o.Status,
	).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (r *repository) InsertLine(ctx context.Context, l Line) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_lines (order_id, product_id, tax_id, description, quantity, unit_price, tax_rate, untaxed, tax_amount, total, line_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		l.OrderID, l.ProductID, l.TaxID, l.Description, l.Quantity, l.UnitPrice, l.TaxRate, l.Untaxed, l.TaxAmount, l.Total, l.LineOrder,
	).Scan(&id)
	if err != nil {
		return 0, db.Classify(err)
	}
	return id, nil
}

func (r *repository) LockStatus(ctx context.Context, id int64) (Status, error) {
	var status Status
	err := r.db.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", shared.NotFound("order", id)
	}
	return status, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.NotFound("order", id)
	}
	return nil
}
