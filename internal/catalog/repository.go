package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Repository reads master data.
type Repository interface {
	ListPartners(ctx context.Context) ([]Partner, error)
	ListAccounts(ctx context.Context) ([]Account, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListTaxes(ctx context.Context) ([]Tax, error)

	PartnerByID(ctx context.Context, id int64) (Partner, error)
	PartnerByName(ctx context.Context, name string) (Partner, error)
	AccountByID(ctx context.Context, id int64) (Account, error)
	AccountByName(ctx context.Context, name string) (Account, error)
	ProductByID(ctx context.Context, id int64) (Product, error)
	ProductByName(ctx context.Context, name string) (Product, error)
	TaxByID(ctx context.Context, id int64) (Tax, error)
	TaxByName(ctx context.Context, name string) (Tax, error)
	TaxByRate(ctx context.Context, rate decimal.Decimal) (Tax, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a PostgreSQL-backed catalog repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const (
	partnerColumns = `id, name, email, phone, role`
	accountColumns = `id, name, type, current_balance`
	productColumns = `id, name, sale_price, cost_price, income_account_id, expense_account_id`
	taxColumns     = `id, name, rate`
)

func scanPartner(row pgx.Row) (Partner, error) {
	var p Partner
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Role)
	return p, err
}

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Name, &a.Type, &a.CurrentBalance)
	return a, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.SalePrice, &p.CostPrice, &p.IncomeAccountID, &p.ExpenseAccountID)
	return p, err
}

func scanTax(row pgx.Row) (Tax, error) {
	var t Tax
	err := row.Scan(&t.ID, &t.Name, &t.Rate)
	return t, err
}

func one[T any](ctx context.Context, pool *pgxpool.Pool, scan func(pgx.Row) (T, error), kind string, key any, query string, args ...any) (T, error) {
	v, err := scan(pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		var zero T
		return zero, shared.NotFound(kind, key)
	}
	return v, err
}

func many[T any](ctx context.Context, pool *pgxpool.Pool, scan func(pgx.Row) (T, error), query string) ([]T, error) {
	rows, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) ListPartners(ctx context.Context) ([]Partner, error) {
	return many(ctx, r.pool, scanPartner, `SELECT `+partnerColumns+` FROM partners ORDER BY name`)
}

func (r *repository) ListAccounts(ctx context.Context) ([]Account, error) {
	return many(ctx, r.pool, scanAccount, `SELECT `+accountColumns+` FROM accounts ORDER BY name`)
}

func (r *repository) ListProducts(ctx context.Context) ([]Product, error) {
	return many(ctx, r.pool, scanProduct, `SELECT `+productColumns+` FROM products ORDER BY name`)
}

func (r *repository) ListTaxes(ctx context.Context) ([]Tax, error) {
	return many(ctx, r.pool, scanTax, `SELECT `+taxColumns+` FROM taxes ORDER BY rate, name`)
}

func (r *repository) PartnerByID(ctx context.Context, id int64) (Partner, error) {
	return one(ctx, r.pool, scanPartner, "partner", id, `SELECT `+partnerColumns+` FROM partners WHERE id = $1`, id)
}

func (r *repository) PartnerByName(ctx context.Context, name string) (Partner, error) {
	return one(ctx, r.pool, scanPartner, "partner", name, `SELECT `+partnerColumns+` FROM partners WHERE name = $1`, name)
}

func (r *repository) AccountByID(ctx context.Context, id int64) (Account, error) {
	return one(ctx, r.pool, scanAccount, "account", id, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *repository) AccountByName(ctx context.Context, name string) (Account, error) {
	return one(ctx, r.pool, scanAccount, "account", name, `SELECT `+accountColumns+` FROM accounts WHERE name = $1`, name)
}

func (r *repository) ProductByID(ctx context.Context, id int64) (Product, error) {
	return one(ctx, r.pool, scanProduct, "product", id, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

func (r *repository) ProductByName(ctx context.Context, name string) (Product, error) {
	return one(ctx, r.pool, scanProduct, "product", name, `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

func (r *repository) TaxByID(ctx context.Context, id int64) (Tax, error) {
	return one(ctx, r.pool, scanTax, "tax", id, `SELECT `+taxColumns+` FROM taxes WHERE id = $1`, id)
}

func (r *repository) TaxByName(ctx context.Context, name string) (Tax, error) {
	return one(ctx, r.pool, scanTax, "tax", name, `SELECT `+taxColumns+` FROM taxes WHERE name = $1`, name)
}

func (r *repository) TaxByRate(ctx context.Context, rate decimal.Decimal) (Tax, error) {
	return one(ctx, r.pool, scanTax, "tax", rate.String(), `SELECT `+taxColumns+` FROM taxes WHERE rate = $1 ORDER BY id LIMIT 1`, rate)
}
