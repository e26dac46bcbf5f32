package bills

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, fixture) {
	t.Helper()
	f := newFixture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Route("/vendor-bills", NewHandler(logger, f.svc, DirectionVendor).MountRoutes)
	r.Route("/sales/bills", NewHandler(logger, f.svc, DirectionSales).MountRoutes)
	return r, f
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func problem(t *testing.T, rr *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestHandlerCreateVendorBill(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := post(t, h, "/vendor-bills", `{
		"vendorName": "Azure Interior",
		"billDate": "2025-01-15",
		"billReference": "AZ-001",
		"lines": [{"product": "Desk", "account": "Purchase Expense", "tax": 5, "quantity": 1, "unitPrice": "17000"}]
	}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var bill Bill
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bill))
	require.Equal(t, "Bill/2025/0001", bill.Number)
	require.Equal(t, "AZ-001", bill.Reference)
	require.Equal(t, "17850.00", bill.Total.StringFixed(2))

	req := httptest.NewRequest(http.MethodGet, "/vendor-bills/1", nil)
	got := httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusOK, got.Code)

	req = httptest.NewRequest(http.MethodGet, "/sales/bills/1", nil)
	got = httptest.NewRecorder()
	h.ServeHTTP(got, req)
	require.Equal(t, http.StatusNotFound, got.Code)
}

func TestHandlerCreateSalesBillFromOrder(t *testing.T) {
	h, f := newTestRouter(t)
	f.addOrder(orders.Order{
		ID: 5, Kind: orders.KindSales, Number: "S00001", PartnerID: 2, Status: orders.StatusConfirmed,
		Lines: []orders.Line{{ProductID: 1, Description: "Desk", Quantity: dec("1"), UnitPrice: dec("20000"), TaxRate: dec("0")}},
	})
	rr := post(t, h, "/sales/bills", `{"salesOrderId": 5, "billDate": "2025-03-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var bill Bill
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bill))
	require.Equal(t, "INV/2025/0001", bill.Number)
	require.Equal(t, "Product Sales", bill.Lines[0].AccountName)
}

func TestHandlerBillProblems(t *testing.T) {
	h, f := newTestRouter(t)

	rr := post(t, h, "/vendor-bills", `{"billDate": "2025-01-15", "lines": [{"product": "Desk", "account": "Purchase Expense", "quantity": 1, "unitPrice": 1}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "vendorName", problem(t, rr).Field)

	rr = post(t, h, "/vendor-bills", `{"vendorName": "Azure Interior", "billDate": "2025-01-15", "lines": [
		{"product": "Desk", "account": "Purchase Expense", "quantity": 1, "unitPrice": 1},
		{"product": "Sofa", "account": "Purchase Expense", "quantity": 1, "unitPrice": 1}]}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	p := problem(t, rr)
	require.Equal(t, "product", p.Entity)
	require.Equal(t, "Sofa", p.Key)

	rr = post(t, h, "/vendor-bills", `{"vendorName": "Azure Interior", "billDate": "2025-01-15", "lines": [
		{"product": "Desk", "account": "Purchase Expense", "quantity": 1, "unitPrice": 1},
		{"product": "Desk", "account": "", "quantity": 1, "unitPrice": 1}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	p = problem(t, rr)
	require.Equal(t, "account", p.Field)
	require.NotNil(t, p.Line)
	require.Equal(t, 1, *p.Line)

	rr = post(t, h, "/sales/bills", `{"customerName": "Deco Addict", "billDate": "15-01-2025", "lineItems": [{"product": "Desk", "account": "Product Sales", "quantity": 1, "unitPrice": 1}]}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "billDate", problem(t, rr).Field)

	require.Empty(t, f.repo.bills)
}
