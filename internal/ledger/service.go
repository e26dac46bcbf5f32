package ledger

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Report is the ledger plus per-partner closing balances.
type Report struct {
	Entries   []Entry   `json:"entries"`
	Summaries []Summary `json:"summaries"`
}

// Service builds the ledger from storage.
type Service struct {
	repo Repository
}

// NewService constructs a ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Build loads bills and payments concurrently and merges them.
func (s *Service) Build(ctx context.Context, filter Filter) (Report, error) {
	var bills, payments []Source
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if bills, err = s.repo.Bills(gctx, filter); err != nil {
			return fmt.Errorf("ledger: load bills: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if payments, err = s.repo.Payments(gctx, filter); err != nil {
			return fmt.Errorf("ledger: load payments: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	entries := Build(bills, payments)
	summaries := Summaries(entries)
	if entries == nil {
		entries = []Entry{}
	}
	if summaries == nil {
		summaries = []Summary{}
	}
	return Report{Entries: entries, Summaries: summaries}, nil
}
