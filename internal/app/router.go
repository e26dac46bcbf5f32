package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/ledger"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
	"github.com/odyssey-erp/odyssey-books/internal/payments"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/statements"
)

// Pinger reports database reachability for the health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	DB      Pinger

	CatalogHandler       *catalog.Handler
	PurchaseOrderHandler *orders.Handler
	SalesOrderHandler    *orders.Handler
	VendorBillHandler    *bills.Handler
	SalesBillHandler     *bills.Handler
	VendorPaymentHandler *payments.Handler
	SalesPaymentHandler  *payments.Handler
	LedgerHandler        *ledger.Handler
	StatementsHandler    *statements.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}
	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.DB != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.DB.Ping(ctx); err != nil {
				params.Logger.Warn("health check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Handle("/metrics", params.Metrics.Handler())
	}

	if params.CatalogHandler != nil {
		params.CatalogHandler.MountRoutes(r)
	}
	if params.PurchaseOrderHandler != nil {
		r.Route("/purchase-orders", params.PurchaseOrderHandler.MountRoutes)
	}
	if params.SalesOrderHandler != nil {
		r.Route("/sales/orders", params.SalesOrderHandler.MountRoutes)
	}
	if params.VendorBillHandler != nil {
		r.Route("/vendor-bills", params.VendorBillHandler.MountRoutes)
	}
	if params.SalesBillHandler != nil {
		r.Route("/sales/bills", params.SalesBillHandler.MountRoutes)
	}
	if params.VendorPaymentHandler != nil {
		r.Route("/vendor-payments", params.VendorPaymentHandler.MountRoutes)
	}
	if params.SalesPaymentHandler != nil {
		r.Route("/sales/payments", params.SalesPaymentHandler.MountRoutes)
	}
	if params.LedgerHandler != nil {
		params.LedgerHandler.MountRoutes(r)
	}
	if params.StatementsHandler != nil {
		params.StatementsHandler.MountRoutes(r)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	return r
}
