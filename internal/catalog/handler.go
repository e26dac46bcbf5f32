package catalog

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
)

// Handler serves read-only catalog lookups.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes on the root router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/contacts", list(h, h.service.Partners))
	r.Get("/accounts", list(h, h.service.Accounts))
	r.Get("/products", list(h, h.service.Products))
	r.Get("/taxes", list(h, h.service.Taxes))
}

func list[T any](h *Handler, load func(context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := load(r.Context())
		if err != nil {
			httpx.Fail(w, r, h.logger, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
	}
}
