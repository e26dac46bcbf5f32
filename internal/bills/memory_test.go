package bills

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

var errInjected = errors.New("injected failure")

type memoryOrders struct {
	orders map[int64]orders.Order
}

func (m *memoryOrders) Get(_ context.Context, id int64) (*orders.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, shared.NotFound("order", id)
	}
	return &o, nil
}

type memoryRepo struct {
	mu         sync.Mutex
	source     *memoryOrders
	bills      map[int64]Bill
	lines      map[int64][]Line
	nextID     int64
	nextLineID int64
	failLine   int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo(source *memoryOrders) *memoryRepo {
	return &memoryRepo{source: source, bills: map[int64]Bill{}, lines: map[int64][]Line{}, failLine: -1}
}

func (r *memoryRepo) lineCount() int {
	n := 0
	for _, ls := range r.lines {
		n += len(ls)
	}
	return n
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	bills := make(map[int64]Bill, len(r.bills))
	for k, v := range r.bills {
		bills[k] = v
	}
	lines := make(map[int64][]Line, len(r.lines))
	for k, v := range r.lines {
		lines[k] = append([]Line(nil), v...)
	}
	orderState := make(map[int64]orders.Order, len(r.source.orders))
	for k, v := range r.source.orders {
		orderState[k] = v
	}
	nextID, nextLineID := r.nextID, r.nextLineID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.bills, r.lines, r.nextID, r.nextLineID = bills, lines, nextID, nextLineID
		r.source.orders = orderState
		return err
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (*Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bills[id]
	if !ok {
		return nil, shared.NotFound("bill", id)
	}
	b.Lines = append([]Line(nil), r.lines[id]...)
	return &b, nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Bill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Bill
	for id := int64(1); id <= r.nextID; id++ {
		b, ok := r.bills[id]
		if !ok {
			continue
		}
		if filter.Direction != "" && b.Direction != filter.Direction {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.PartnerID != 0 && b.PartnerID != filter.PartnerID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (t *memoryTx) LatestNumber(_ context.Context, _ numbering.Series, prefix string) (string, error) {
	var latest string
	for _, b := range t.repo.bills {
		if !strings.HasPrefix(b.Number, prefix) {
			continue
		}
		if len(b.Number) > len(latest) || (len(b.Number) == len(latest) && b.Number > latest) {
			latest = b.Number
		}
	}
	return latest, nil
}

func (t *memoryTx) Insert(_ context.Context, b Bill) (int64, error) {
	for _, existing := range t.repo.bills {
		if existing.Number == b.Number {
			return 0, shared.ErrDuplicateNumber
		}
	}
	t.repo.nextID++
	b.ID = t.repo.nextID
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	t.repo.bills[b.ID] = b
	return b.ID, nil
}

func (t *memoryTx) InsertLine(_ context.Context, l Line) (int64, error) {
	if l.LineOrder == t.repo.failLine {
		return 0, errInjected
	}
	t.repo.nextLineID++
	l.ID = t.repo.nextLineID
	t.repo.lines[l.BillID] = append(t.repo.lines[l.BillID], l)
	return l.ID, nil
}

func (t *memoryTx) LockStatus(_ context.Context, id int64) (Status, error) {
	b, ok := t.repo.bills[id]
	if !ok {
		return "", shared.NotFound("bill", id)
	}
	return b.Status, nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	b, ok := t.repo.bills[id]
	if !ok {
		return shared.NotFound("bill", id)
	}
	b.Status = status
	t.repo.bills[id] = b
	return nil
}

func (t *memoryTx) LockOrderStatus(_ context.Context, id int64) (orders.Status, error) {
	o, ok := t.repo.source.orders[id]
	if !ok {
		return "", shared.NotFound("order", id)
	}
	return o.Status, nil
}

func (t *memoryTx) SetOrderStatus(_ context.Context, id int64, status orders.Status) error {
	o := t.repo.source.orders[id]
	o.Status = status
	t.repo.source.orders[id] = o
	return nil
}
