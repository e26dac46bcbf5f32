package bills

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Handler serves the bill endpoints of one direction.
type Handler struct {
	logger  *slog.Logger
	service *Service
	dir     Direction
}

// NewHandler builds a handler bound to dir.
func NewHandler(logger *slog.Logger, service *Service, dir Direction) *Handler {
	return &Handler{logger: logger, service: service, dir: dir}
}

// MountRoutes registers bill routes relative to the mount point.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Post("/{id}/cancel", h.cancel)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var (
		input ConvertInput
		err   error
	)
	if h.dir == DirectionSales {
		var req SalesBillRequest
		if err = httpx.Bind(r, &req); err == nil {
			input, err = req.Input()
		}
	} else {
		var req VendorBillRequest
		if err = httpx.Bind(r, &req); err == nil {
			input, err = req.Input()
		}
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bill, err := h.service.Convert(r.Context(), input)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, bill)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bill, err := h.service.Get(r.Context(), h.dir, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bill, err := h.service.Cancel(r.Context(), h.dir, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bill)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Direction: h.dir, Status: Status(q.Get("status"))}
	if raw := q.Get("partnerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.fail(w, r, shared.NewValidationError("partnerId", "must be an integer"))
			return
		}
		filter.PartnerID = id
	}
	for field, target := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		if raw := q.Get(field); raw != "" {
			t, err := time.Parse(dateLayout, raw)
			if err != nil {
				h.fail(w, r, shared.NewValidationError(field, "must be a date formatted "+dateLayout))
				return
			}
			*target = t
		}
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if items == nil {
		items = []Bill{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.Fail(w, r, h.logger.With(slog.String("direction", string(h.dir))), err)
}
