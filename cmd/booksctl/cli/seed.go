package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

type seedPartner struct {
	name, email, role string
}

type seedAccount struct {
	name, kind, balance string
}

type seedProduct struct {
	name, sale, cost, income, expense string
}

type seedTax struct {
	name, rate string
}

var (
	seedPartners = []seedPartner{
		{"Azure Interior", "azure.interior@example.com", "vendor"},
		{"Deco Addict", "deco.addict@example.com", "customer"},
		{"Gemini Furniture", "gemini.furniture@example.com", "both"},
	}
	seedAccounts = []seedAccount{
		{"Purchase Expense", "Expense", "0"},
		{"Bank", "Assets", "100000"},
		{"Cash", "Assets", "0"},
		{"Product Sales", "Income", "0"},
		{"Accounts Payable", "Liabilities", "0"},
	}
	seedProducts = []seedProduct{
		{"Desk", "20000", "17000", "Product Sales", "Purchase Expense"},
		{"Chair", "1500", "1100", "Product Sales", "Purchase Expense"},
	}
	seedTaxes = []seedTax{
		{"VAT 5%", "5"},
		{"VAT 15%", "15"},
	}
)

func newSeedCommand(connect connector) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo partners, accounts, products and taxes",
		Long:  "Insert demo catalog data. Existing rows with the same name are left untouched.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, connect, func(pool *pgxpool.Pool) error {
				if err := db.WithTx(cmd.Context(), pool, func(tx pgx.Tx) error {
					return seedCatalog(cmd.Context(), tx)
				}); err != nil {
					return fmt.Errorf("seed catalog: %w", err)
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "seed complete")
				return err
			})
		},
	}
}

func seedCatalog(ctx context.Context, tx pgx.Tx) error {
	for _, p := range seedPartners {
		if _, err := tx.Exec(ctx, `INSERT INTO partners (name, email, role) VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING`, p.name, p.email, p.role); err != nil {
			return err
		}
	}
	for _, a := range seedAccounts {
		if _, err := tx.Exec(ctx, `INSERT INTO accounts (name, type, current_balance) VALUES ($1, $2, $3::numeric)
ON CONFLICT (name) DO NOTHING`, a.name, a.kind, a.balance); err != nil {
			return err
		}
	}
	for _, t := range seedTaxes {
		if _, err := tx.Exec(ctx, `INSERT INTO taxes (name, rate) VALUES ($1, $2::numeric)
ON CONFLICT (name) DO NOTHING`, t.name, t.rate); err != nil {
			return err
		}
	}
	for _, p := range seedProducts {
		if _, err := tx.Exec(ctx, `INSERT INTO products (name, sale_price, cost_price, income_account_id, expense_account_id)
VALUES ($1, $2::numeric, $3::numeric,
	(SELECT id FROM accounts WHERE name = $4),
	(SELECT id FROM accounts WHERE name = $5))
ON CONFLICT (name) DO NOTHING`, p.name, p.sale, p.cost, p.income, p.expense); err != nil {
			return err
		}
	}
	return nil
}
