package numbering

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

type memoryStore struct {
	numbers []string
}

func (m *memoryStore) LatestNumber(ctx context.Context, series Series, prefix string) (string, error) {
	var matches []string
	for _, n := range m.numbers {
		if strings.HasPrefix(n, prefix) {
			matches = append(matches, n)
		}
	}
	if len(matches) == 0 {
		return "", nil
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) > len(matches[j])
		}
		return matches[i] > matches[j]
	})
	return matches[0], nil
}

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func TestSeeds(t *testing.T) {
	require.Equal(t, "P00001", PurchaseOrder.Seed(day))
	require.Equal(t, "S00001", SalesOrder.Seed(day))
	require.Equal(t, "Bill/2025/0001", VendorBill.Seed(day))
	require.Equal(t, "INV/2025/0001", SalesBill.Seed(day))
	require.Equal(t, "Pay/25/0001", VendorPayment.Seed(day))
	require.Equal(t, "Rec/25/0001", SalesPayment.Seed(day))
}

func TestNextIsMonotonicWithoutGaps(t *testing.T) {
	store := &memoryStore{}
	ctx := context.Background()
	for i := 1; i <= 12; i++ {
		n, err := Next(ctx, store, PurchaseOrder, day)
		require.NoError(t, err)
		require.Equal(t, PurchaseOrder.Format(day, int64(i)), n)
		store.numbers = append(store.numbers, n)
	}
	require.Equal(t, "P00012", store.numbers[11])
}

func TestNextRollsPastPaddingWidth(t *testing.T) {
	store := &memoryStore{numbers: []string{"Bill/2025/9998", "Bill/2025/9999"}}
	ctx := context.Background()

	n, err := Next(ctx, store, VendorBill, day)
	require.NoError(t, err)
	require.Equal(t, "Bill/2025/10000", n)
	store.numbers = append(store.numbers, n)

	n, err = Next(ctx, store, VendorBill, day)
	require.NoError(t, err)
	require.Equal(t, "Bill/2025/10001", n)
}

func TestNextRestartsEachYear(t *testing.T) {
	store := &memoryStore{numbers: []string{"Pay/24/0042"}}
	n, err := Next(context.Background(), store, VendorPayment, day)
	require.NoError(t, err)
	require.Equal(t, "Pay/25/0001", n)
}

func TestNextRejectsMalformedStoredNumber(t *testing.T) {
	store := &memoryStore{numbers: []string{"Bill/2025/00A1"}}
	_, err := Next(context.Background(), store, VendorBill, day)
	require.ErrorIs(t, err, shared.ErrDataIntegrity)

	_, err = VendorBill.Parse(day, "Bill/2025/12")
	require.ErrorIs(t, err, shared.ErrDataIntegrity)
}

func TestRedisLockerExcludesSecondHolder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, 200*time.Millisecond)
	ctx := context.Background()
	key := VendorBill.LockKey(day)

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	require.True(t, mr.Exists(key))

	_, err = locker.Lock(ctx, key)
	require.ErrorIs(t, err, ErrLockTimeout)
	require.ErrorIs(t, err, shared.ErrContention)

	unlock()
	require.False(t, mr.Exists(key))

	unlock, err = locker.Lock(ctx, key)
	require.NoError(t, err)
	unlock()
}

func TestRedisLockerKeepsForeignToken(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := NewRedisLocker(client, time.Second)
	key := SalesBill.LockKey(day)
	unlock, err := locker.Lock(context.Background(), key)
	require.NoError(t, err)

	// Simulate expiry and takeover by another holder.
	require.NoError(t, mr.Set(key, "someone-else"))
	unlock()
	got, err := mr.Get(key)
	require.NoError(t, err)
	require.Equal(t, "someone-else", got)
}
