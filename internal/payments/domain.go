// Package payments settles posted bills with exactly one payment each.
package payments

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/bills"
	"github.com/odyssey-erp/odyssey-books/internal/numbering"
)

// Type is the money flow of a payment.
type Type string

const (
	TypeSend    Type = "send"
	TypeReceive Type = "receive"
)

// TypeFor returns the payment type settling bills in direction dir.
func TypeFor(dir bills.Direction) Type {
	if dir == bills.DirectionSales {
		return TypeReceive
	}
	return TypeSend
}

// Series returns the numbering series of payments of type t.
func (t Type) Series() numbering.Series {
	if t == TypeReceive {
		return numbering.SalesPayment
	}
	return numbering.VendorPayment
}

// Signed returns amount with the sign it has on the settlement account.
func (t Type) Signed(amount decimal.Decimal) decimal.Decimal {
	if t == TypeSend {
		return amount.Neg()
	}
	return amount
}

// Payment settles one bill in full.
type Payment struct {
	ID          int64           `json:"id"`
	Number      string          `json:"number"`
	Type        Type            `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name,omitempty"`
	BillID      int64           `json:"bill_id"`
	BillNumber  string          `json:"bill_number,omitempty"`
	AccountID   int64           `json:"account_id"`
	AccountName string          `json:"account_name,omitempty"`
	Note        string          `json:"note,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// BillRef is the part of a bill settlement needs.
type BillRef struct {
	ID        int64
	Direction bills.Direction
	Number    string
	PartnerID int64
	Total     decimal.Decimal
	Status    bills.Status
}

// SettleInput identifies the bill and the Assets account that pays it.
type SettleInput struct {
	BillID    int64
	Date      time.Time
	AccountID int64
	Note      string
}

// ListFilter narrows payment listings.
type ListFilter struct {
	Type      Type
	PartnerID int64
	From      time.Time
	To        time.Time
	Limit     int
	Offset    int
}
