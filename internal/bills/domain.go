// Package bills converts orders and raw line input into posted vendor and
// sales bills.
package bills

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
	"github.com/odyssey-erp/odyssey-books/internal/orders"
)

// Direction tells vendor bills (money owed) from sales bills (money due).
type Direction string

const (
	DirectionVendor Direction = "vendor"
	DirectionSales  Direction = "sales"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionVendor || d == DirectionSales
}

// Series returns the numbering series of bills in direction d.
func (d Direction) Series() numbering.Series {
	if d == DirectionSales {
		return numbering.SalesBill
	}
	return numbering.VendorBill
}

// OrderKind returns the kind of order a bill in direction d is built from.
func (d Direction) OrderKind() orders.Kind {
	if d == DirectionSales {
		return orders.KindSales
	}
	return orders.KindPurchase
}

// PartnerField is the request field naming the partner for direction d.
func (d Direction) PartnerField() string {
	if d == DirectionSales {
		return "customerName"
	}
	return "vendorName"
}

// OrderField is the request field naming the source order for direction d.
func (d Direction) OrderField() string {
	if d == DirectionSales {
		return "salesOrderId"
	}
	return "purchaseOrderId"
}

// Allows reports whether partner may appear on a bill in direction d.
func (d Direction) Allows(p catalog.Partner) bool {
	if d == DirectionSales {
		return p.IsCustomer()
	}
	return p.IsVendor()
}

// DefaultAccountID is the product account a copied order line posts to.
func (d Direction) DefaultAccountID(p catalog.Product) *int64 {
	if d == DirectionSales {
		return p.IncomeAccountID
	}
	return p.ExpenseAccountID
}

// Status is the bill lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPosted    Status = "posted"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDraft:  {StatusPosted, StatusCancelled},
	StatusPosted: {StatusPaid, StatusCancelled},
}

// CanTransition reports whether a bill may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Bill is a vendor or sales bill with its lines.
type Bill struct {
	ID            int64           `json:"id"`
	Direction     Direction       `json:"direction"`
	Number        string          `json:"number"`
	BillDate      time.Time       `json:"bill_date"`
	DueDate       time.Time       `json:"due_date"`
	PartnerID     int64           `json:"partner_id"`
	PartnerName   string          `json:"partner_name,omitempty"`
	SourceOrderID *int64          `json:"source_order_id,omitempty"`
	Reference     string          `json:"reference"`
	Untaxed       decimal.Decimal `json:"untaxed"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Lines         []Line          `json:"lines,omitempty"`
}

// Line is one priced product on a bill, posted to an account.
type Line struct {
	ID          int64           `json:"id"`
	BillID      int64           `json:"bill_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	AccountID   int64           `json:"account_id"`
	AccountName string          `json:"account_name,omitempty"`
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

// ConvertInput describes a bill to build. Either SourceOrderID or
// PartnerName identifies the partner. Lines may be omitted when the bill is
// built from an order, in which case the order lines are copied.
type ConvertInput struct {
	Direction     Direction
	SourceOrderID *int64
	PartnerName   string
	BillDate      time.Time
	DueDate       time.Time
	Reference     *string
	Lines         []LineInput
}

// LineInput carries natural keys as typed by a user.
type LineInput struct {
	Product     string
	Account     string
	Tax         string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// ListFilter narrows bill listings.
type ListFilter struct {
	Direction Direction
	PartnerID int64
	Status    Status
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
