package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/calc"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service orchestrates order creation and lifecycle.
type Service struct {
	repo    Repository
	catalog catalog.Repository
	locker  numbering.Locker
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs an order service. A nil locker falls back to the
// unique number constraint alone.
func NewService(repo Repository, catalogRepo catalog.Repository, locker numbering.Locker, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if locker == nil {
		locker = numbering.NopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: catalogRepo, locker: locker, metrics: metrics, logger: logger, now: time.Now}
}

// Create validates, prices and numbers a new draft order.
func (s *Service) Create(ctx context.Context, kind Kind, input CreateInput) (*Order, error) {
	if !kind.Valid() {
		return nil, shared.NewValidationError("kind", "must be purchase or sales")
	}
	if len(input.Lines) == 0 {
		return nil, shared.NewValidationError("lines", "must contain at least one line")
	}
	partner, err := s.catalog.PartnerByID(ctx, input.PartnerID)
	if err != nil {
		return nil, err
	}
	if kind == KindPurchase && !partner.IsVendor() {
		return nil, shared.NewValidationError("contactId", fmt.Sprintf("%s is not a vendor", partner.Name))
	}
	if kind == KindSales && !partner.IsCustomer() {
		return nil, shared.NewValidationError("contactId", fmt.Sprintf("%s is not a customer", partner.Name))
	}

	lines := make([]Line, 0, len(input.Lines))
	priced := make([]calc.Line, 0, len(input.Lines))
	for i, in := range input.Lines {
		line, err := s.resolveLine(ctx, kind, i, in)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		priced = append(priced, calc.Line{Quantity: line.Quantity, UnitPrice: line.UnitPrice, TaxRate: line.TaxRate})
	}
	totals, err := calc.Document(priced)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Untaxed = totals.Lines[i].Untaxed
		lines[i].TaxAmount = totals.Lines[i].TaxAmount
		lines[i].Total = totals.Lines[i].Total
	}

	date := input.OrderDate
	if date.IsZero() {
		date = s.now()
	}
	order := Order{
		Kind:      kind,
		OrderDate: date,
		PartnerID: partner.ID,
		Reference: input.Reference,
		Untaxed:   totals.Untaxed,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		Status:    StatusDraft,
	}

	series := kind.Series()
	unlock, err := s.locker.Lock(ctx, series.LockKey(date))
	if err != nil {
		return nil, fmt.Errorf("orders: lock %s: %w", series.Code, err)
	}
	defer unlock()

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		number, err := numbering.Next(ctx, tx, series, date)
		if err != nil {
			return err
		}
		order.Number = number
		id, err = tx.Insert(ctx, order)
		if err != nil {
			return err
		}
		for i, line := range lines {
			line.OrderID = id
			line.LineOrder = i
			if _, err := tx.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateNumber) {
			s.metrics.NumberConflict(series.Code)
		}
		return nil, err
	}
	s.metrics.DocumentCreated(series.Code)
	s.logger.InfoContext(ctx, "order created", slog.String("number", order.Number), slog.Int64("id", id), slog.String("kind", string(kind)))
	return s.repo.Get(ctx, id)
}

func (s *Service) resolveLine(ctx context.Context, kind Kind, index int, in LineInput) (Line, error) {
	product, err := s.catalog.ProductByID(ctx, in.ProductID)
	if err != nil {
		return Line{}, err
	}
	line := Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		TaxRate:     decimal.Zero,
	}
	if line.Description == "" {
		line.Description = product.Name
	}
	if line.UnitPrice.IsZero() {
		line.UnitPrice = product.CostPrice
		if kind == KindSales {
			line.UnitPrice = product.SalePrice
		}
	}
	if in.TaxID != nil {
		tax, err := s.catalog.TaxByID(ctx, *in.TaxID)
		if err != nil {
			return Line{}, err
		}
		id := tax.ID
		line.TaxID = &id
		line.TaxRate = tax.Rate
	}
	if err := calc.Validate(index, calc.Line{Quantity: line.Quantity, UnitPrice: line.UnitPrice, TaxRate: line.TaxRate}); err != nil {
		return Line{}, err
	}
	return line, nil
}

// Get returns an order with its lines.
func (s *Service) Get(ctx context.Context, kind Kind, id int64) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Kind != kind {
		return nil, shared.NotFound("order", id)
	}
	return order, nil
}

// List returns order headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.List(ctx, filter)
}

// Confirm moves a draft order to confirmed.
func (s *Service) Confirm(ctx context.Context, kind Kind, id int64) (*Order, error) {
	return s.transition(ctx, kind, id, StatusConfirmed)
}

// Cancel cancels a draft or confirmed order.
func (s *Service) Cancel(ctx context.Context, kind Kind, id int64) (*Order, error) {
	return s.transition(ctx, kind, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, kind Kind, id int64, next Status) (*Order, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.LockStatus(ctx, id)
		if err != nil {
			return err
		}
		if !current.CanTransition(next) {
			return fmt.Errorf("%w: order %d is %s", shared.ErrInvalidStatus, id, current)
		}
		return tx.UpdateStatus(ctx, id, next)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
