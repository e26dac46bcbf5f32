package statements

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildProfitAndLoss(t *testing.T) {
	pl := BuildProfitAndLoss(PaymentTotals{Received: dec("46000"), Sent: dec("17850")})
	require.True(t, pl.Income.Equal(dec("46000")))
	require.True(t, pl.Expense.Equal(dec("17850")))
	require.True(t, pl.ProfitLoss.Equal(dec("28150")))

	loss := BuildProfitAndLoss(PaymentTotals{Sent: dec("10")})
	require.True(t, loss.ProfitLoss.Equal(dec("-10")))
}

func TestBuildBalanceSheet(t *testing.T) {
	bs := BuildBalanceSheet(dec("82150"), BillTotals{
		OpenSales:  dec("46000"),
		OpenVendor: dec("1000"),
		AllSales:   dec("46000"),
		AllVendor:  dec("18850"),
	})
	require.True(t, bs.Assets.CashAndBank.Equal(dec("82150")))
	require.True(t, bs.Assets.AccountsReceivable.Equal(dec("46000")))
	require.True(t, bs.Assets.Total.Equal(dec("128150")))
	require.True(t, bs.Liabilities.Total.Equal(dec("1000")))
	require.True(t, bs.Equity.RetainedEarnings.Equal(dec("27150")))
	require.True(t, bs.Balance.Equal(dec("100000")))
}

type stubRepo struct {
	payments PaymentTotals
	bills    BillTotals
	cash     decimal.Decimal
	err      error
	period   Period
}

func (s *stubRepo) PaymentTotals(_ context.Context, p Period) (PaymentTotals, error) {
	s.period = p
	return s.payments, s.err
}

func (s *stubRepo) BillTotals(context.Context) (BillTotals, error) {
	return s.bills, s.err
}

func (s *stubRepo) CashAndBank(context.Context) (decimal.Decimal, error) {
	return s.cash, nil
}

func TestServiceProfitAndLossPeriod(t *testing.T) {
	repo := &stubRepo{payments: PaymentTotals{Received: dec("5"), Sent: dec("2")}}
	svc := NewService(repo)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	pl, err := svc.ProfitAndLoss(context.Background(), Period{From: from, To: to})
	require.NoError(t, err)
	require.Equal(t, from, repo.period.From)
	require.NotNil(t, pl.From)
	require.True(t, pl.ProfitLoss.Equal(dec("3")))

	_, err = svc.ProfitAndLoss(context.Background(), Period{From: to, To: from})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestServiceBalanceSheetPropagatesErrors(t *testing.T) {
	boom := errors.New("timeout")
	_, err := NewService(&stubRepo{err: boom}).BalanceSheet(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestHandlers(t *testing.T) {
	repo := &stubRepo{
		payments: PaymentTotals{Received: dec("0"), Sent: dec("17850")},
		bills:    BillTotals{AllVendor: dec("17850")},
		cash:     dec("82150"),
	}
	r := chi.NewRouter()
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), NewService(repo)).MountRoutes(r)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/profit-loss?from=2025-01-01", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var pl ProfitAndLoss
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pl))
	require.True(t, pl.ProfitLoss.Equal(dec("-17850")))

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/profit-loss?to=yesterday", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/balance-sheet", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var bs BalanceSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bs))
	require.True(t, bs.Equity.RetainedEarnings.Equal(dec("-17850")))
	require.True(t, bs.Balance.Equal(dec("100000")))
}
