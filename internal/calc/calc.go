// Package calc computes line and document amounts in fixed-point decimals.
package calc

import (
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

const (
	// Places is the number of fractional digits kept on monetary amounts.
	Places = 2
	// QuantityPlaces is the number of fractional digits stored on quantities.
	QuantityPlaces = 4
	// RatePlaces is the number of fractional digits stored on tax rates.
	RatePlaces = 2
)

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// Line is the priced input of a single document line.
type Line struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
}

// Amounts holds the computed values of a line.
type Amounts struct {
	Untaxed   decimal.Decimal `json:"untaxed"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Totals aggregates a whole document.
type Totals struct {
	Lines     []Amounts
	Untaxed   decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// LineAmounts computes untaxed, tax and total for one line without validating it.
func LineAmounts(l Line) Amounts {
	untaxed := l.Quantity.Mul(l.UnitPrice).Round(Places)
	tax := untaxed.Mul(l.TaxRate).Div(hundred).Round(Places)
	return Amounts{
		Untaxed:   untaxed,
		TaxAmount: tax,
		Total:     untaxed.Add(tax),
	}
}

// Validate checks the line constraints. index is reported back in the error,
// and fields carry their request names. Values must fit the stored precision
// so that the persisted line reproduces its computed amounts.
func Validate(index int, l Line) error {
	if !l.Quantity.GreaterThan(zero) {
		return shared.NewLineError(index, "quantity", "must be greater than zero")
	}
	if !fits(l.Quantity, QuantityPlaces) {
		return shared.NewLineError(index, "quantity", "must have at most 4 decimal places")
	}
	if !l.UnitPrice.GreaterThan(zero) {
		return shared.NewLineError(index, "unitPrice", "must be greater than zero")
	}
	if !fits(l.UnitPrice, Places) {
		return shared.NewLineError(index, "unitPrice", "must have at most 2 decimal places")
	}
	if l.TaxRate.LessThan(zero) || l.TaxRate.GreaterThan(hundred) {
		return shared.NewLineError(index, "tax", "rate must be between 0 and 100")
	}
	if !fits(l.TaxRate, RatePlaces) {
		return shared.NewLineError(index, "tax", "rate must have at most 2 decimal places")
	}
	return nil
}

// fits reports whether d has no significant digits beyond places. Trailing
// zeros such as 10.500 are accepted.
func fits(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Truncate(places))
}

// Document validates every line and sums their totals. The first invalid line aborts.
func Document(lines []Line) (Totals, error) {
	if len(lines) == 0 {
		return Totals{}, shared.NewValidationError("lines", "must contain at least one line")
	}
	out := Totals{Lines: make([]Amounts, 0, len(lines))}
	for i, l := range lines {
		if err := Validate(i, l); err != nil {
			return Totals{}, err
		}
		a := LineAmounts(l)
		out.Lines = append(out.Lines, a)
		out.Untaxed = out.Untaxed.Add(a.Untaxed)
		out.TaxAmount = out.TaxAmount.Add(a.TaxAmount)
		out.Total = out.Total.Add(a.Total)
	}
	return out, nil
}
