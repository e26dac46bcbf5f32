package catalog

import "context"

// Service exposes catalog listings.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Partners(ctx context.Context) ([]Partner, error) {
	return s.repo.ListPartners(ctx)
}

func (s *Service) Accounts(ctx context.Context) ([]Account, error) {
	return s.repo.ListAccounts(ctx)
}

func (s *Service) Products(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) Taxes(ctx context.Context) ([]Tax, error) {
	return s.repo.ListTaxes(ctx)
}
