package orders

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

var errInjected = errors.New("injected failure")

type memoryRepo struct {
	mu         sync.Mutex
	orders     map[int64]Order
	lines      map[int64][]Line
	nextID     int64
	nextLineID int64
	// failLine makes InsertLine fail for the line with this LineOrder; -1 disables.
	failLine int
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[int64]Order{}, lines: map[int64][]Line{}, failLine: -1}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	orders := make(map[int64]Order, len(r.orders))
	for k, v := range r.orders {
		orders[k] = v
	}
	lines := make(map[int64][]Line, len(r.lines))
	for k, v := range r.lines {
		lines[k] = append([]Line(nil), v...)
	}
	nextID, nextLineID := r.nextID, r.nextLineID
	if err := fn(ctx, &memoryTx{repo: r}); err != nil {
		r.orders, r.lines, r.nextID, r.nextLineID = orders, lines, nextID, nextLineID
		return err
	}
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id int64) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, shared.NotFound("order", id)
	}
	o.Lines = append([]Line(nil), r.lines[id]...)
	return &o, nil
}

func (r *memoryRepo) List(_ context.Context, filter ListFilter) ([]Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if filter.Kind != "" && o.Kind != filter.Kind {
			continue
		}
		if filter.PartnerID != 0 && o.PartnerID != filter.PartnerID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t *memoryTx) LatestNumber(_ context.Context, _ numbering.Series, prefix string) (string, error) {
	var latest string
	for _, o := range t.repo.orders {
		if !strings.HasPrefix(o.Number, prefix) {
			continue
		}
		if len(o.Number) > len(latest) || (len(o.Number) == len(latest) && o.Number > latest) {
			latest = o.Number
		}
	}
	return latest, nil
}

func (t *memoryTx) Insert(_ context.Context, o Order) (int64, error) {
	for _, existing := range t.repo.orders {
		if existing.Number == o.Number {
			return 0, shared.ErrDuplicateNumber
		}
	}
	t.repo.nextID++
	o.ID = t.repo.nextID
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	o.Lines = nil
	t.repo.orders[o.ID] = o
	return o.ID, nil
}

func (t *memoryTx) InsertLine(_ context.Context, l Line) (int64, error) {
	if l.LineOrder == t.repo.failLine {
		return 0, errInjected
	}
	t.repo.nextLineID++
	l.ID = t.repo.nextLineID
	t.repo.lines[l.OrderID] = append(t.repo.lines[l.OrderID], l)
	return l.ID, nil
}

func (t *memoryTx) LockStatus(_ context.Context, id int64) (Status, error) {
	o, ok := t.repo.orders[id]
	if !ok {
		return "", shared.NotFound("order", id)
	}
	return o.Status, nil
}

func (t *memoryTx) UpdateStatus(_ context.Context, id int64, status Status) error {
	o, ok := t.repo.orders[id]
	if !ok {
		return shared.NotFound("order", id)
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	t.repo.orders[id] = o
	return nil
}
