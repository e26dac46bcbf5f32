package bills

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/calc"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// DefaultDueDays is used when Options.DueDays is not set.
const DefaultDueDays = 30

// OrderSource loads source orders with their lines. orders.Repository satisfies it.
type OrderSource interface {
	Get(ctx context.Context, id int64) (*orders.Order, error)
}

// Options tunes the bill service.
type Options struct {
	DueDays int
	Locker  numbering.Locker
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// Service runs the order-to-bill conversion pipeline.
type Service struct {
	repo     Repository
	orders   OrderSource
	catalog  catalog.Repository
	resolver catalog.Resolver
	locker   numbering.Locker
	metrics  *observability.Metrics
	logger   *slog.Logger
	dueDays  int
}

// NewService constructs a bill service. resolver turns line keys into
// catalog entities; catalogRepo resolves the ids carried by source orders.
func NewService(repo Repository, source OrderSource, catalogRepo catalog.Repository, resolver catalog.Resolver, opts Options) *Service {
	if opts.DueDays <= 0 {
		opts.DueDays = DefaultDueDays
	}
	if opts.Locker == nil {
		opts.Locker = numbering.NopLocker{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		orders:   source,
		catalog:  catalogRepo,
		resolver: resolver,
		locker:   opts.Locker,
		metrics:  opts.Metrics,
		logger:   opts.Logger,
		dueDays:  opts.DueDays,
	}
}

// Convert builds, numbers and persists a posted bill in one unit of work.
func (s *Service) Convert(ctx context.Context, input ConvertInput) (*Bill, error) {
	dir := input.Direction
	if !dir.Valid() {
		return nil, shared.NewValidationError("direction", "must be vendor or sales")
	}
	if input.BillDate.IsZero() {
		return nil, shared.NewValidationError("billDate", "is required")
	}

	var order *orders.Order
	if input.SourceOrderID != nil {
		var err error
		order, err = s.sourceOrder(ctx, dir, *input.SourceOrderID)
		if err != nil {
			return nil, err
		}
	}

	partner, err := s.partner(ctx, dir, order, input.PartnerName)
	if err != nil {
		return nil, err
	}

	var lines []Line
	switch {
	case len(input.Lines) > 0:
		lines, err = s.resolveLines(ctx, input.Lines)
	case order != nil:
		lines, err = s.copyOrderLines(ctx, dir, order)
	default:
		return nil, shared.NewValidationError("lines", "must contain at least one line")
	}
	if err != nil {
		return nil, err
	}

	priced := make([]calc.Line, len(lines))
	for i, l := range lines {
		priced[i] = calc.Line{Quantity: l.Quantity, UnitPrice: l.UnitPrice, TaxRate: l.TaxRate}
	}
	totals, err := calc.Document(priced)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Untaxed = totals.Lines[i].Untaxed
		lines[i].TaxAmount = totals.Lines[i].TaxAmount
		lines[i].Total = totals.Lines[i].Total
		lines[i].LineOrder = i
	}

	bill := Bill{
		Direction: dir,
		BillDate:  input.BillDate,
		DueDate:   input.DueDate,
		PartnerID: partner.ID,
		Untaxed:   totals.Untaxed,
		TaxAmount: totals.TaxAmount,
		Total:     totals.Total,
		Status:    StatusPosted,
	}
	if bill.DueDate.IsZero() {
		bill.DueDate = bill.BillDate.AddDate(0, 0, s.dueDays)
	}
	if bill.DueDate.Before(bill.BillDate) {
		return nil, shared.NewValidationError("dueDate", "must not be before billDate")
	}
	if order != nil {
		id := order.ID
		bill.SourceOrderID = &id
		bill.Reference = order.Reference
	}
	if input.Reference != nil && strings.TrimSpace(*input.Reference) != "" {
		bill.Reference = strings.TrimSpace(*input.Reference)
	}

	series := dir.Series()
	unlock, err := s.locker.Lock(ctx, series.LockKey(bill.BillDate))
	if err != nil {
		return nil, fmt.Errorf("bills: lock %s: %w", series.Code, err)
	}
	defer unlock()

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if order != nil {
			status, err := tx.LockOrderStatus(ctx, order.ID)
			if err != nil {
				return err
			}
			if !status.Convertible() {
				return fmt.Errorf("%w: order %s is %s", shared.ErrInvalidStatus, order.Number, status)
			}
			if status == orders.StatusDraft {
				if err := tx.SetOrderStatus(ctx, order.ID, orders.StatusConfirmed); err != nil {
					return err
				}
			}
		}
		number, err := numbering.Next(ctx, tx, series, bill.BillDate)
		if err != nil {
			return err
		}
		bill.Number = number
		id, err = tx.Insert(ctx, bill)
		if err != nil {
			return err
		}
		for _, line := range lines {
			line.BillID = id
			if _, err := tx.InsertLine(ctx, line); err != nil {
				return fmt.Errorf("bills: insert line %d: %w", line.LineOrder, err)
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
	s.logger.InfoContext(ctx, "bill posted",
		slog.String("number", bill.Number),
		slog.Int64("id", id),
		slog.String("partner", partner.Name),
		slog.String("total", bill.Total.StringFixed(calc.Places)))
	return s.repo.Get(ctx, id)
}

func (s *Service) sourceOrder(ctx context.Context, dir Direction, id int64) (*orders.Order, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Kind != dir.OrderKind() {
		return nil, shared.NewValidationError(dir.OrderField(), fmt.Sprintf("order %s is a %s order", order.Number, order.Kind))
	}
	if !order.Status.Convertible() {
		return nil, fmt.Errorf("%w: order %s is %s", shared.ErrInvalidStatus, order.Number, order.Status)
	}
	return order, nil
}

func (s *Service) partner(ctx context.Context, dir Direction, order *orders.Order, name string) (catalog.Partner, error) {
	var (
		partner catalog.Partner
		err     error
	)
	switch {
	case order != nil:
		partner, err = s.catalog.PartnerByID(ctx, order.PartnerID)
		if err != nil {
			return catalog.Partner{}, err
		}
		if name = strings.TrimSpace(name); name != "" && name != partner.Name {
			return catalog.Partner{}, shared.NewValidationError(dir.PartnerField(), fmt.Sprintf("does not match order partner %s", partner.Name))
		}
	case strings.TrimSpace(name) != "":
		partner, err = s.resolver.Partner(ctx, name)
		if err != nil {
			return catalog.Partner{}, err
		}
	default:
		return catalog.Partner{}, shared.NewValidationError(dir.PartnerField(), "is required")
	}
	if !dir.Allows(partner) {
		return catalog.Partner{}, shared.NewValidationError(dir.PartnerField(), fmt.Sprintf("%s cannot be billed as %s", partner.Name, dir))
	}
	return partner, nil
}

func (s *Service) resolveLines(ctx context.Context, in []LineInput) ([]Line, error) {
	lines := make([]Line, 0, len(in))
	for _, l := range in {
		product, err := s.resolver.Product(ctx, l.Product)
		if err != nil {
			return nil, err
		}
		account, err := s.resolver.Account(ctx, l.Account)
		if err != nil {
			return nil, err
		}
		tax, err := s.resolver.Tax(ctx, l.Tax)
		if err != nil {
			return nil, err
		}
		line := Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			AccountID:   account.ID,
			AccountName: account.Name,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     tax.Rate,
		}
		if tax.ID != 0 {
			taxID := tax.ID
			line.TaxID = &taxID
		}
		if line.Description == "" {
			line.Description = product.Name
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// copyOrderLines carries quantity, price and tax over verbatim; only the
// account is derived from the product for the bill direction.
func (s *Service) copyOrderLines(ctx context.Context, dir Direction, order *orders.Order) ([]Line, error) {
	if len(order.Lines) == 0 {
		return nil, shared.NewValidationError("lines", fmt.Sprintf("order %s has no lines", order.Number))
	}
	lines := make([]Line, 0, len(order.Lines))
	for i, ol := range order.Lines {
		product, err := s.catalog.ProductByID(ctx, ol.ProductID)
		if err != nil {
			return nil, err
		}
		accountID := dir.DefaultAccountID(product)
		if accountID == nil {
			return nil, shared.NewLineError(i, "account", fmt.Sprintf("product %s has no default account", product.Name))
		}
		account, err := s.catalog.AccountByID(ctx, *accountID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			AccountID:   account.ID,
			AccountName: account.Name,
			TaxID:       ol.TaxID,
			Description: ol.Description,
			Quantity:    ol.Quantity,
			UnitPrice:   ol.UnitPrice,
			TaxRate:     ol.TaxRate,
		})
	}
	return lines, nil
}

// Get returns a bill of direction dir with its lines.
func (s *Service) Get(ctx context.Context, dir Direction, id int64) (*Bill, error) {
	bill, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if bill.Direction != dir {
		return nil, shared.NotFound("bill", id)
	}
	return bill, nil
}

// List returns bill headers matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Bill, error) {
	return s.repo.List(ctx, filter)
}

// Cancel cancels a posted bill. Paid bills stay paid.
func (s *Service) Cancel(ctx context.Context, dir Direction, id int64) (*Bill, error) {
	if _, err := s.Get(ctx, dir, id); err != nil {
		return nil, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		status, err := tx.LockStatus(ctx, id)
		if err != nil {
			return err
		}
		if !status.CanTransition(StatusCancelled) {
			return fmt.Errorf("%w: bill %d is %s", shared.ErrInvalidStatus, id, status)
		}
		return tx.UpdateStatus(ctx, id, StatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
