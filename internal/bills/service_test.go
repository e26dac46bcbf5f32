package bills

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

var billDay = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ref(s string) *string {
	return &s
}

type fixture struct {
	svc    *Service
	repo   *memoryRepo
	orders *memoryOrders
}

func newFixture() fixture {
	cat := catalogtest.Seeded()
	source := &memoryOrders{orders: map[int64]orders.Order{}}
	repo := newMemoryRepo(source)
	svc := NewService(repo, source, cat, catalog.NewNameResolver(cat), Options{})
	return fixture{svc: svc, repo: repo, orders: source}
}

func (f fixture) addOrder(o orders.Order) {
	f.orders.orders[o.ID] = o
}

func deskLine() LineInput {
	return LineInput{Product: "Desk", Account: "Purchase Expense", Tax: "5", Quantity: dec("1"), UnitPrice: dec("17000")}
}

func purchaseOrder(status orders.Status) orders.Order {
	tax := int64(1)
	return orders.Order{
		ID: 10, Kind: orders.KindPurchase, Number: "P00001", PartnerID: 1, Reference: "Q-77", Status: status,
		Total: dec("17850"),
		Lines: []orders.Line{{
			ProductID: 1, TaxID: &tax, Description: "Desk", Quantity: dec("1"), UnitPrice: dec("17000"), TaxRate: dec("5"),
		}},
	}
}

func TestConvertAzureInteriorVendorBill(t *testing.T) {
	f := newFixture()
	bill, err := f.svc.Convert(context.Background(), ConvertInput{
		Direction:   DirectionVendor,
		PartnerName: "Azure Interior",
		BillDate:    billDay,
		Lines:       []LineInput{deskLine()},
	})
	require.NoError(t, err)
	require.Equal(t, "Bill/2025/0001", bill.Number)
	require.Equal(t, StatusPosted, bill.Status)
	require.Equal(t, "17850.00", bill.Total.StringFixed(2))
	require.Equal(t, "850.00", bill.TaxAmount.StringFixed(2))
	require.Equal(t, billDay.AddDate(0, 0, 30), bill.DueDate)
	require.Len(t, bill.Lines, 1)
	require.Equal(t, int64(1), bill.Lines[0].AccountID)
	require.NotNil(t, bill.Lines[0].TaxID)
	require.Equal(t, int64(1), *bill.Lines[0].TaxID)

	second, err := f.svc.Convert(context.Background(), ConvertInput{
		Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: []LineInput{deskLine()},
	})
	require.NoError(t, err)
	require.Equal(t, "Bill/2025/0002", second.Number)
}

func TestConvertSalesBillNumbering(t *testing.T) {
	f := newFixture()
	bill, err := f.svc.Convert(context.Background(), ConvertInput{
		Direction:   DirectionSales,
		PartnerName: "Deco Addict",
		BillDate:    billDay,
		Lines:       []LineInput{{Product: "Desk", Account: "Product Sales", Tax: "VAT 15%", Quantity: dec("2"), UnitPrice: dec("20000")}},
	})
	require.NoError(t, err)
	require.Equal(t, "INV/2025/0001", bill.Number)
	require.Equal(t, "46000.00", bill.Total.StringFixed(2))
}

func TestConvertIsAtomic(t *testing.T) {
	five := func() []LineInput {
		lines := make([]LineInput, 5)
		for i := range lines {
			lines[i] = deskLine()
		}
		return lines
	}
	ctx := context.Background()

	t.Run("unresolved product", func(t *testing.T) {
		f := newFixture()
		lines := five()
		lines[2].Product = "Sofa"
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: lines})
		var nf *shared.NotFoundError
		require.True(t, errors.As(err, &nf))
		require.Equal(t, "product", nf.Kind)
		require.Equal(t, "Sofa", nf.Key)
		require.Empty(t, f.repo.bills)
		require.Zero(t, f.repo.lineCount())
	})

	t.Run("invalid quantity", func(t *testing.T) {
		f := newFixture()
		lines := five()
		lines[2].Quantity = dec("-1")
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: lines})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, 2, verr.Line)
		require.Equal(t, "quantity", verr.Field)
		require.Empty(t, f.repo.bills)
	})

	t.Run("price finer than a cent", func(t *testing.T) {
		for _, price := range []string{"0.001", "10.005"} {
			f := newFixture()
			lines := five()
			lines[3].UnitPrice = dec(price)
			lines[3].Quantity = dec("3")
			_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: lines})
			var verr *shared.ValidationError
			require.True(t, errors.As(err, &verr), price)
			require.Equal(t, 3, verr.Line)
			require.Equal(t, "unitPrice", verr.Field)
			require.Empty(t, f.repo.bills)
			require.Zero(t, f.repo.lineCount())
		}
	})

	t.Run("quantity finer than storage", func(t *testing.T) {
		f := newFixture()
		lines := five()
		lines[1].Quantity = dec("1.00005")
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: lines})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, 1, verr.Line)
		require.Equal(t, "quantity", verr.Field)
		require.Empty(t, f.repo.bills)
	})

	t.Run("persistence failure mid-way", func(t *testing.T) {
		f := newFixture()
		f.repo.failLine = 2
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: five()})
		require.ErrorIs(t, err, errInjected)
		require.Empty(t, f.repo.bills)
		require.Zero(t, f.repo.lineCount())

		f.repo.failLine = -1
		bill, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: five()})
		require.NoError(t, err)
		require.Equal(t, "Bill/2025/0001", bill.Number)
		require.Len(t, bill.Lines, 5)
	})
}

func TestConvertFromOrderCopiesLinesAndConfirmsOrder(t *testing.T) {
	f := newFixture()
	f.addOrder(purchaseOrder(orders.StatusDraft))
	orderID := int64(10)

	bill, err := f.svc.Convert(context.Background(), ConvertInput{Direction: DirectionVendor, SourceOrderID: &orderID, BillDate: billDay})
	require.NoError(t, err)
	require.Equal(t, int64(1), bill.PartnerID)
	require.Equal(t, "Q-77", bill.Reference)
	require.NotNil(t, bill.SourceOrderID)
	require.Equal(t, orderID, *bill.SourceOrderID)
	require.True(t, bill.Total.Equal(dec("17850")))
	require.Len(t, bill.Lines, 1)
	require.Equal(t, int64(1), bill.Lines[0].AccountID)
	require.Equal(t, "Purchase Expense", bill.Lines[0].AccountName)
	require.True(t, bill.Lines[0].UnitPrice.Equal(dec("17000")))
	require.Equal(t, orders.StatusConfirmed, f.orders.orders[orderID].Status)
}

func TestConvertFromOrderKeepsOrderPricesAndAllowsReferenceOverride(t *testing.T) {
	f := newFixture()
	o := purchaseOrder(orders.StatusConfirmed)
	o.Lines[0].UnitPrice = dec("16500")
	f.addOrder(o)
	orderID := o.ID

	bill, err := f.svc.Convert(context.Background(), ConvertInput{
		Direction: DirectionVendor, SourceOrderID: &orderID, BillDate: billDay, Reference: ref("INV-AZ-9"),
	})
	require.NoError(t, err)
	require.Equal(t, "INV-AZ-9", bill.Reference)
	require.True(t, bill.Lines[0].UnitPrice.Equal(dec("16500")))
	require.Equal(t, orders.StatusConfirmed, f.orders.orders[orderID].Status)
}

func TestConvertFromOrderRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("missing order", func(t *testing.T) {
		f := newFixture()
		id := int64(99)
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, SourceOrderID: &id, BillDate: billDay})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("cancelled order", func(t *testing.T) {
		f := newFixture()
		f.addOrder(purchaseOrder(orders.StatusCancelled))
		id := int64(10)
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, SourceOrderID: &id, BillDate: billDay})
		require.ErrorIs(t, err, shared.ErrInvalidStatus)
		require.Empty(t, f.repo.bills)
	})

	t.Run("wrong direction", func(t *testing.T) {
		f := newFixture()
		f.addOrder(purchaseOrder(orders.StatusDraft))
		id := int64(10)
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionSales, SourceOrderID: &id, BillDate: billDay})
		require.ErrorIs(t, err, shared.ErrValidation)
	})

	t.Run("partner mismatch", func(t *testing.T) {
		f := newFixture()
		f.addOrder(purchaseOrder(orders.StatusDraft))
		id := int64(10)
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, SourceOrderID: &id, PartnerName: "Gemini Furniture", BillDate: billDay})
		require.ErrorIs(t, err, shared.ErrValidation)
		require.Equal(t, orders.StatusDraft, f.orders.orders[id].Status)
	})

	t.Run("product without default account", func(t *testing.T) {
		f := newFixture()
		o := purchaseOrder(orders.StatusDraft)
		o.Lines = append(o.Lines, orders.Line{ProductID: 2, Quantity: dec("1"), UnitPrice: dec("150")})
		f.addOrder(o)
		id := o.ID
		_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, SourceOrderID: &id, BillDate: billDay})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		require.Equal(t, 1, verr.Line)
		require.Equal(t, "account", verr.Field)
	})
}

func TestConvertPartnerRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Deco Addict", BillDate: billDay, Lines: []LineInput{deskLine()}})
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, BillDate: billDay, Lines: []LineInput{deskLine()}})
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "vendorName", verr.Field)

	_, err = f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Nobody", BillDate: billDay, Lines: []LineInput{deskLine()}})
	require.ErrorIs(t, err, shared.ErrNotFound)

	bill, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Gemini Furniture", BillDate: billDay, Lines: []LineInput{deskLine()}})
	require.NoError(t, err)
	require.Equal(t, int64(3), bill.PartnerID)
}

func TestConvertDueDate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Convert(ctx, ConvertInput{
		Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, DueDate: billDay.AddDate(0, 0, -1), Lines: []LineInput{deskLine()},
	})
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "dueDate", verr.Field)

	due := billDay.AddDate(0, 0, 7)
	bill, err := f.svc.Convert(ctx, ConvertInput{
		Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, DueDate: due, Lines: []LineInput{deskLine()},
	})
	require.NoError(t, err)
	require.Equal(t, due, bill.DueDate)
}

func TestCancelBill(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	bill, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: []LineInput{deskLine()}})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, DirectionSales, bill.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)

	cancelled, err := f.svc.Cancel(ctx, DirectionVendor, bill.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, DirectionVendor, bill.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	paid, err := f.svc.Convert(ctx, ConvertInput{Direction: DirectionVendor, PartnerName: "Azure Interior", BillDate: billDay, Lines: []LineInput{deskLine()}})
	require.NoError(t, err)
	b := f.repo.bills[paid.ID]
	b.Status = StatusPaid
	f.repo.bills[paid.ID] = b
	_, err = f.svc.Cancel(ctx, DirectionVendor, paid.ID)
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestStatusTransitions(t *testing.T) {
	require.True(t, StatusPosted.CanTransition(StatusPaid))
	require.True(t, StatusPosted.CanTransition(StatusCancelled))
	require.False(t, StatusPaid.CanTransition(StatusCancelled))
	require.False(t, StatusCancelled.CanTransition(StatusPosted))
	require.False(t, StatusDraft.CanTransition(StatusPaid))
}
