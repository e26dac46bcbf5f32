// Package orders manages purchase and sales orders.
package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/numbering"
)

// Kind distinguishes purchase from sales orders.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindSales    Kind = "sales"
)

// Series returns the numbering series of the kind.
func (k Kind) Series() numbering.Series {
	if k == KindSales {
		return numbering.SalesOrder
	}
	return numbering.PurchaseOrder
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindPurchase || k == KindSales
}

// Status is the order lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:     {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled},
}

// CanTransition reports whether the order may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Convertible reports whether a bill may be built from an order in status s.
func (s Status) Convertible() bool {
	return s == StatusDraft || s == StatusConfirmed
}

// Order is a purchase or sales order with its lines.
type Order struct {
	ID          int64           `json:"id"`
	Kind        Kind            `json:"kind"`
	Number      string          `json:"number"`
	OrderDate   time.Time       `json:"order_date"`
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name,omitempty"`
	Reference   string          `json:"reference"`
	Untaxed     decimal.Decimal `json:"untaxed"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	Status      Status          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Lines       []Line          `json:"lines"`
}

// Line is one priced product on an order.
type Line struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	TaxID       *int64          `json:"tax_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	Untaxed     decimal.Decimal `json:"untaxed"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	Total       decimal.Decimal `json:"total"`
	LineOrder   int             `json:"line_order"`
}

// CreateInput carries a new order.
type CreateInput struct {
	PartnerID int64
	Reference string
	OrderDate time.Time
	Lines     []LineInput
}

// LineInput carries one requested order line.
type LineInput struct {
	ProductID   int64
	TaxID       *int64
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// ListFilter narrows order listings.
type ListFilter struct {
	Kind      Kind
	PartnerID int64
	Status    Status
	Limit     int
	Offset    int
}
