package statements

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service produces the financial statements.
type Service struct {
	repo Repository
}

// NewService constructs a statements service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ProfitAndLoss reports realised income and expense for period.
func (s *Service) ProfitAndLoss(ctx context.Context, period Period) (ProfitAndLoss, error) {
	if !period.From.IsZero() && !period.To.IsZero() && period.To.Before(period.From) {
		return ProfitAndLoss{}, shared.NewValidationError("to", "must not be before from")
	}
	totals, err := s.repo.PaymentTotals(ctx, period)
	if err != nil {
		return ProfitAndLoss{}, fmt.Errorf("statements: payment totals: %w", err)
	}
	pl := BuildProfitAndLoss(totals)
	if !period.From.IsZero() {
		from := period.From
		pl.From = &from
	}
	if !period.To.IsZero() {
		to := period.To
		pl.To = &to
	}
	return pl, nil
}

// BalanceSheet reports the current snapshot.
func (s *Service) BalanceSheet(ctx context.Context) (BalanceSheet, error) {
	var (
		cash  decimal.Decimal
		bills BillTotals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cash, err = s.repo.CashAndBank(gctx); err != nil {
			return fmt.Errorf("statements: cash and bank: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if bills, err = s.repo.BillTotals(gctx); err != nil {
			return fmt.Errorf("statements: bill totals: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return BalanceSheet{}, err
	}
	return BuildBalanceSheet(cash, bills), nil
}
