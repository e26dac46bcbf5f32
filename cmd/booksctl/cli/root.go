// Package cli implements the booksctl operator commands.
package cli

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-books/internal/app"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

// connector opens the database pool lazily so that commands which never
// touch PostgreSQL run without configuration.
type connector func(ctx context.Context) (*pgxpool.Pool, error)

func connectFromEnv(ctx context.Context) (*pgxpool.Pool, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, err
	}
	return db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: 2})
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(connectFromEnv)
}

func newRootCommand(connect connector) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "booksctl",
		Short: "Operate the books database and print reports",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newSchemaCommand(connect),
		newSeedCommand(connect),
		newLedgerCommand(connect),
		newProfitLossCommand(connect),
		newBalanceSheetCommand(connect),
	)
	return rootCmd
}

func withPool(cmd *cobra.Command, connect connector, fn func(pool *pgxpool.Pool) error) error {
	pool, err := connect(cmd.Context())
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer pool.Close()
	return fn(pool)
}
