package payments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const dateLayout = "2006-01-02"

// SettleRequest is the JSON body of POST /vendor-payments and POST /sales/payments.
// journalId names the Assets account the money moves through.
type SettleRequest struct {
	BillID      int64  `json:"billId" validate:"required,gt=0"`
	PaymentDate string `json:"paymentDate" validate:"required,datetime=2006-01-02"`
	JournalID   int64  `json:"journalId" validate:"required,gt=0"`
	Note        string `json:"note" validate:"max=512"`
}

// Handler serves the payment endpoints of one bill direction.
type Handler struct {
	logger  *slog.Logger
	service *Service
	dir     bills.Direction
}

// NewHandler builds a handler settling bills in direction dir.
func NewHandler(logger *slog.Logger, service *Service, dir bills.Direction) *Handler {
	return &Handler{logger: logger, service: service, dir: dir}
}

// MountRoutes registers payment routes relative to the mount point.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.settle)
	r.Get("/{id}", h.show)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	var req SettleRequest
	if err := httpx.Bind(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		h.fail(w, r, shared.NewValidationError("paymentDate", "must be a date formatted "+dateLayout))
		return
	}
	payment, err := h.service.Settle(r.Context(), h.dir, SettleInput{
		BillID:    req.BillID,
		Date:      date,
		AccountID: req.JournalID,
		Note:      req.Note,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	payment, err := h.service.Get(r.Context(), TypeFor(h.dir), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payment)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Type: TypeFor(h.dir)}
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
		items = []Payment{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": items})
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httpx.Fail(w, r, h.logger.With(slog.String("direction", string(h.dir))), err)
}
