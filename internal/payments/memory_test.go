package payments

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type memoryRepo struct {
	mu       sync.Mutex
	catalog  *catalogtest.Memory
	bills    map[int64]BillRef
	payments map[int64]Payment
	nextID   int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(cat *catalogtest.Memory) *memoryRepo {
	return &memoryRepo{catalog: cat, bills: map[int64]BillRef{}, payments: map[int64]Payment{}}
}

func (r *memoryRepo) addBill(b BillRef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bills[b.ID] = b
}

func (r *memoryRepo) billStatus(id int64) bills.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bills[id].Status
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	billState := make(map[int64]BillRef, len(r.bills))
	for k, v := range r.bills {
		billState[k] = v
	}
	paymentState := make(map[int64]Payment, len(r.payments))
	for k, v := range r.payments {
		paymentState[k] = v
	}
	accountState := make(map[int64]catalog.Account, len(r.catalog.Accounts))
	for k, v := range r.catalog.Accounts {
		accountState[k] = v
	}
	nextID := r.nextID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.bills, r.payments, r.catalog.Accounts, r.nextID = billState, paymentState, accountState, nextID
		return err
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (*Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, shared.NotFound("payment", id)
	}
	p.BillNumber = r.bills[p.BillID].Number
	return &p, nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Payment
	for id := int64(1); id <= r.nextID; id++ {
		p, ok := r.payments[id]
		if !ok || (filter.Type != "" && p.Type != filter.Type) {
			continue
		}
		if filter.PartnerID != 0 && p.PartnerID != filter.PartnerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *memoryRepo) Bill(_ context.Context, id int64) (BillRef, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return BillRef{}, shared.NotFound("bill", id)
	}
	return b, nil
}

func (t *memoryTx) LatestNumber(_ context.Context, _ numbering.Series, prefix string) (string, error) {
	var latest string
	for _, p := range t.repo.payments {
		if !strings.HasPrefix(p.Number, prefix) {
			continue
		}
		if len(p.Number) > len(latest) || (len(p.Number) == len(latest) && p.Number > latest) {
			latest = p.Number
		}
	}
	return latest, nil
}

func (t *memoryTx) LockBill(_ context.Context, id int64) (BillRef, error) {
	b, ok := t.repo.bills[id]
	if !ok {
		return BillRef{}, shared.NotFound("bill", id)
	}
	return b, nil
}

func (t *memoryTx) MarkBillPaid(_ context.Context, id int64) error {
	b := t.repo.bills[id]
	b.Status = bills.StatusPaid
	t.repo.bills[id] = b
	return nil
}

func (t *memoryTx) Insert(_ context.Context, p Payment) (int64, error) {
	for _, existing := range t.repo.payments {
		if existing.BillID == p.BillID {
			return 0, shared.ErrAlreadySettled
		}
		if existing.Number == p.Number {
			return 0, shared.ErrDuplicateNumber
		}
	}
	t.repo.nextID++
	p.ID = t.repo.nextID
	p.CreatedAt = time.Now()
	t.repo.payments[p.ID] = p
	return p.ID, nil
}

func (t *memoryTx) AdjustBalance(_ context.Context, accountID int64, delta decimal.Decimal) error {
	a, ok := t.repo.catalog.Accounts[accountID]
	if !ok {
		return shared.NotFound("account", accountID)
	}
	a.CurrentBalance = a.CurrentBalance.Add(delta)
	t.repo.catalog.Accounts[accountID] = a
	return nil
}

// AccountByID reads the catalog under the repository lock.
func (r *memoryRepo) AccountByID(ctx context.Context, id int64) (catalog.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.catalog.AccountByID(ctx, id)
}
