package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-books/internal/ledger"
	"github.com/odyssey-erp/odyssey-books/internal/statements"
)

const dateLayout = "2006-01-02"

func newLedgerCommand(connect connector) *cobra.Command {
	var partnerID int64
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Print the partner ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, connect, func(pool *pgxpool.Pool) error {
				report, err := ledger.NewService(ledger.NewRepository(pool)).Build(cmd.Context(), ledger.Filter{PartnerID: partnerID})
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), report)
				}
				return renderLedger(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().Int64Var(&partnerID, "partner", 0, "restrict to one partner id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newProfitLossCommand(connect connector) *cobra.Command {
	var from, to string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "profit-loss",
		Short: "Print the cash-basis profit and loss statement",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := parsePeriod(from, to)
			if err != nil {
				return err
			}
			return withPool(cmd, connect, func(pool *pgxpool.Pool) error {
				pl, err := statements.NewService(statements.NewRepository(pool)).ProfitAndLoss(cmd.Context(), period)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), pl)
				}
				return renderProfitAndLoss(cmd.OutOrStdout(), pl)
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first day of the period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last day of the period (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newBalanceSheetCommand(connect connector) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Print the balance sheet snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withPool(cmd, connect, func(pool *pgxpool.Pool) error {
				bs, err := statements.NewService(statements.NewRepository(pool)).BalanceSheet(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd.OutOrStdout(), bs)
				}
				return renderBalanceSheet(cmd.OutOrStdout(), bs)
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func parsePeriod(from, to string) (statements.Period, error) {
	var period statements.Period
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return period, fmt.Errorf("--from: %w", err)
		}
		period.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return period, fmt.Errorf("--to: %w", err)
		}
		period.To = t
	}
	return period, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderLedger(w io.Writer, report ledger.Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "PARTNER\tBUCKET\tDATE\tNUMBER\tAMOUNT\tBALANCE\t")
	for _, e := range report.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			e.PartnerName, e.Bucket, e.Date.Format(dateLayout), e.Number, e.Amount.StringFixed(2), e.Balance.StringFixed(2))
	}
	fmt.Fprintln(tw, "\t\t\t\t\t\t")
	fmt.Fprintln(tw, "PARTNER\tBUCKET\tBILLED\tPAID\tBALANCE\t\t")
	for _, s := range report.Summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\t\n",
			s.PartnerName, s.Bucket, s.Billed.StringFixed(2), s.Paid.StringFixed(2), s.Balance.StringFixed(2))
	}
	return tw.Flush()
}

func renderProfitAndLoss(w io.Writer, pl statements.ProfitAndLoss) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Income\t%s\t\n", pl.Income.StringFixed(2))
	fmt.Fprintf(tw, "Expense\t%s\t\n", pl.Expense.StringFixed(2))
	fmt.Fprintf(tw, "Profit/Loss\t%s\t\n", pl.ProfitLoss.StringFixed(2))
	return tw.Flush()
}

func renderBalanceSheet(w io.Writer, bs statements.BalanceSheet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Cash and bank\t%s\t\n", bs.Assets.CashAndBank.StringFixed(2))
	fmt.Fprintf(tw, "Accounts receivable\t%s\t\n", bs.Assets.AccountsReceivable.StringFixed(2))
	fmt.Fprintf(tw, "Total assets\t%s\t\n", bs.Assets.Total.StringFixed(2))
	fmt.Fprintf(tw, "Accounts payable\t%s\t\n", bs.Liabilities.AccountsPayable.StringFixed(2))
	fmt.Fprintf(tw, "Total liabilities\t%s\t\n", bs.Liabilities.Total.StringFixed(2))
	fmt.Fprintf(tw, "Retained earnings\t%s\t\n", bs.Equity.RetainedEarnings.StringFixed(2))
	fmt.Fprintf(tw, "Balance\t%s\t\n", bs.Balance.StringFixed(2))
	return tw.Flush()
}
