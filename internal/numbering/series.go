// Package numbering issues sequential human-readable document numbers.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Series describes one numbering format.
type Series struct {
	Code   string
	Table  string
	Width  int
	prefix func(time.Time) string
}

func fixed(p string) func(time.Time) string {
	return func(time.Time) string { return p }
}

func longYear(p string) func(time.Time) string {
	return func(t time.Time) string { return fmt.Sprintf("%s/%04d/", p, t.Year()) }
}

func shortYear(p string) func(time.Time) string {
	return func(t time.Time) string { return fmt.Sprintf("%s/%02d/", p, t.Year()%100) }
}

var (
	PurchaseOrder = Series{Code: "purchase_order", Table: "orders", Width: 5, prefix: fixed("P")}
	SalesOrder    = Series{Code: "sales_order", Table: "orders", Width: 5, prefix: fixed("S")}
	VendorBill    = Series{Code: "vendor_bill", Table: "bills", Width: 4, prefix: longYear("Bill")}
	SalesBill     = Series{Code: "sales_bill", Table: "bills", Width: 4, prefix: longYear("INV")}
	VendorPayment = Series{Code: "vendor_payment", Table: "payments", Width: 4, prefix: shortYear("Pay")}
	SalesPayment  = Series{Code: "sales_payment", Table: "payments", Width: 4, prefix: shortYear("Rec")}
)

// Prefix returns the fixed part of numbers issued on date.
func (s Series) Prefix(date time.Time) string {
	return s.prefix(date)
}

// Format renders sequence n for date.
func (s Series) Format(date time.Time, n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix(date), s.Width, n)
}

// Seed is the first number of the series for date.
func (s Series) Seed(date time.Time) string {
	return s.Format(date, 1)
}

// Parse extracts the numeric suffix of number. A number that does not match the
// series format yields ErrDataIntegrity.
func (s Series) Parse(date time.Time, number string) (int64, error) {
	prefix := s.Prefix(date)
	suffix, ok := strings.CutPrefix(number, prefix)
	if !ok || len(suffix) < s.Width {
		return 0, fmt.Errorf("%w: %s number %q does not match %q", shared.ErrDataIntegrity, s.Code, number, prefix)
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %s number %q has non-numeric suffix", shared.ErrDataIntegrity, s.Code, number)
		}
	}
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %s number %q has invalid sequence", shared.ErrDataIntegrity, s.Code, number)
	}
	return n, nil
}

// Increment returns the number following last, or the seed when last is empty.
func (s Series) Increment(date time.Time, last string) (string, error) {
	if last == "" {
		return s.Seed(date), nil
	}
	n, err := s.Parse(date, last)
	if err != nil {
		return "", err
	}
	return s.Format(date, n+1), nil
}

// LockKey is the distributed lock key guarding the series for date.
func (s Series) LockKey(date time.Time) string {
	return "books:numbering:" + s.Code + ":" + s.Prefix(date)
}
