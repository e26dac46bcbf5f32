package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/calc"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// AccountSource looks settlement accounts up. catalog.Repository satisfies it.
type AccountSource interface {
	AccountByID(ctx context.Context, id int64) (catalog.Account, error)
}

// Service settles bills.
type Service struct {
	repo     Repository
	accounts AccountSource
	locker   numbering.Locker
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// NewService constructs a settlement service.
func NewService(repo Repository, accounts AccountSource, locker numbering.Locker, metrics *observability.Metrics, logger *slog.Logger) *Service {
	if locker == nil {
		locker = numbering.NopLocker{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, accounts: accounts, locker: locker, metrics: metrics, logger: logger}
}

// Settle pays bill input.BillID in full from an Assets account. Checks run in
// order: bill exists in direction dir, bill not yet paid and posted, account
// is an Assets account. A second call for the same bill yields ErrAlreadySettled.
func (s *Service) Settle(ctx context.Context, dir bills.Direction, input SettleInput) (*Payment, error) {
	payType := TypeFor(dir)
	payment, err := s.settle(ctx, dir, payType, input)
	s.metrics.Settlement(string(payType), outcome(err))
	return payment, err
}

func (s *Service) settle(ctx context.Context, dir bills.Direction, payType Type, input SettleInput) (*Payment, error) {
	if input.Date.IsZero() {
		return nil, shared.NewValidationError("paymentDate", "is required")
	}
	bill, err := s.repo.Bill(ctx, input.BillID)
	if err != nil {
		return nil, err
	}
	if bill.Direction != dir {
		return nil, shared.NotFound("bill", input.BillID)
	}
	if err := settleable(bill); err != nil {
		return nil, err
	}
	account, err := s.accounts.AccountByID(ctx, input.AccountID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("%w: account %d does not exist", shared.ErrInvalidAccount, input.AccountID)
	}
	if err != nil {
		return nil, err
	}
	if account.Type != catalog.AccountAssets {
		return nil, fmt.Errorf("%w: %s is %s", shared.ErrInvalidAccount, account.Name, account.Type)
	}

	payment := Payment{
		Type:        payType,
		PaymentDate: input.Date,
		BillID:      bill.ID,
		AccountID:   account.ID,
		Note:        strings.TrimSpace(input.Note),
	}
	series := payType.Series()
	unlock, err := s.locker.Lock(ctx, series.LockKey(input.Date))
	if err != nil {
		return nil, fmt.Errorf("payments: lock %s: %w", series.Code, err)
	}
	defer unlock()

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		locked, err := tx.LockBill(ctx, bill.ID)
		if err != nil {
			return err
		}
		if err := settleable(locked); err != nil {
			return err
		}
		payment.Amount = locked.Total
		payment.PartnerID = locked.PartnerID
		number, err := numbering.Next(ctx, tx, series, input.Date)
		if err != nil {
			return err
		}
		payment.Number = number
		if id, err = tx.Insert(ctx, payment); err != nil {
			return err
		}
		if err := tx.MarkBillPaid(ctx, locked.ID); err != nil {
			return err
		}
		return tx.AdjustBalance(ctx, account.ID, payType.Signed(payment.Amount))
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateNumber) {
			s.metrics.NumberConflict(series.Code)
		}
		return nil, err
	}
	s.metrics.DocumentCreated(series.Code)
	s.logger.InfoContext(ctx, "bill settled",
		slog.String("bill", bill.Number),
		slog.String("payment", payment.Number),
		slog.String("amount", payment.Amount.StringFixed(calc.Places)))
	return s.repo.Get(ctx, id)
}

func settleable(b BillRef) error {
	switch b.Status {
	case bills.StatusPaid:
		return fmt.Errorf("%w: %s", shared.ErrAlreadySettled, b.Number)
	case bills.StatusPosted:
		return nil
	default:
		return fmt.Errorf("%w: bill %s is %s", shared.ErrInvalidStatus, b.Number, b.Status)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, shared.ErrAlreadySettled):
		return "already_settled"
	case errors.Is(err, shared.ErrInvalidAccount):
		return "invalid_account"
	case errors.Is(err, shared.ErrInvalidStatus):
		return "invalid_status"
	case errors.Is(err, shared.ErrNotFound):
		return "not_found"
	case errors.Is(err, shared.ErrValidation):
		return "invalid"
	case errors.Is(err, shared.ErrContention):
		return "contention"
	default:
		return "error"
	}
}

// Get returns a payment of type t.
func (s *Service) Get(ctx context.Context, t Type, id int64) (*Payment, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Type != t {
		return nil, shared.NotFound("payment", id)
	}
	return p, nil
}

// List returns payments matching filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Payment, error) {
	return s.repo.List(ctx, filter)
}
