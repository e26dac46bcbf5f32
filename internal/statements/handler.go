package statements

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Handler serves the statement reports.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the root router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/profit-loss", h.profitLoss)
	r.Get("/balance-sheet", h.balanceSheet)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	var period Period
	q := r.URL.Query()
	for field, target := range map[string]*time.Time{"from": &period.From, "to": &period.To} {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Fail(w, r, h.logger, shared.NewValidationError(field, "must be a date formatted 2006-01-02"))
			return
		}
		*target = t
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), period)
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	bs, err := h.service.BalanceSheet(r.Context())
	if err != nil {
		httpx.Fail(w, r, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}
