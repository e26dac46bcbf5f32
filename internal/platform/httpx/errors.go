// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Status returns the HTTP status mapped to err.
func Status(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateNumber),
		errors.Is(err, shared.ErrContention):
		return http.StatusConflict
	case errors.Is(err, shared.ErrAlreadySettled),
		errors.Is(err, shared.ErrInvalidAccount),
		errors.Is(err, shared.ErrInvalidStatus):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Internal
// errors are reported generically; callers log the detail.
func RespondError(w http.ResponseWriter, err error) {
	status := Status(err)
	p := ProblemDetail{Status: status}
	switch status {
	case http.StatusBadRequest:
		p.Title = "Validation Failed"
		p.Type = "validation-error"
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			p.Field = verr.Field
			if verr.Line >= 0 {
				line := verr.Line
				p.Line = &line
			}
		}
	case http.StatusNotFound:
		p.Title = "Not Found"
		p.Type = "not-found"
		var nf *shared.NotFoundError
		if errors.As(err, &nf) {
			p.Entity = nf.Kind
			p.Key = nf.Key
		}
	case http.StatusConflict:
		if errors.Is(err, shared.ErrContention) {
			p.Title = "Concurrent Update"
			p.Type = "contention"
		} else {
			p.Title = "Duplicate Number"
			p.Type = "duplicate-number"
		}
	case http.StatusUnprocessableEntity:
		p.Title = "Business Rule Violation"
		switch {
		case errors.Is(err, shared.ErrAlreadySettled):
			p.Type = "already-settled"
		case errors.Is(err, shared.ErrInvalidAccount):
			p.Type = "invalid-account"
		default:
			p.Type = "invalid-status"
		}
	default:
		p.Title = "Internal Error"
		p.Type = "persistence-error"
		JSON(w, status, p)
		return
	}
	p.Detail = err.Error()
	JSON(w, status, p)
}

// Fail writes the problem response for err. Failures that map to 500 are
// logged with the request id; business rejections are not.
func Fail(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if Status(err) == http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.Any("error", err))
	}
	RespondError(w, err)
}
