package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate runs struct tag validation and converts the first failure into a
// shared.ValidationError carrying the JSON field name and line index.
func Validate(target any) error {
	err := validate.Struct(target)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return shared.NewValidationError("body", err.Error())
	}
	return fieldError(verrs[0])
}

func fieldError(fe validator.FieldError) *shared.ValidationError {
	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gt":
		reason = "must be greater than " + fe.Param()
	case "gte":
		reason = "must be at least " + fe.Param()
	case "min":
		reason = "must have at least " + fe.Param() + " item(s)"
	case "datetime":
		reason = "must be a date formatted " + fe.Param()
	case "oneof":
		reason = "must be one of " + fe.Param()
	}
	line := -1
	// Namespace looks like request.lines[2].quantity.
	ns := fe.Namespace()
	if open := strings.LastIndex(ns, "["); open >= 0 {
		if end := strings.Index(ns[open:], "]"); end > 0 {
			if n, err := strconv.Atoi(ns[open+1 : open+end]); err == nil && strings.Contains(ns[open+end:], ".") {
				line = n
			}
		}
	}
	if line >= 0 {
		return shared.NewLineError(line, fe.Field(), reason)
	}
	return shared.NewValidationError(fe.Field(), reason)
}

// Bind decodes the JSON body into target and validates it.
func Bind(r *http.Request, target any) error {
	if err := DecodeJSON(r, target); err != nil {
		return shared.NewValidationError("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return Validate(target)
}

// PathID parses a positive integer URL parameter.
func PathID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NewValidationError("id", "must be a positive integer")
	}
	return id, nil
}
