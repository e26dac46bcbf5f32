// Package ledger derives the per-partner running-balance ledger from bills
// and payments. Entries are computed on request and never stored.
package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/catalog"
)

// Kind identifies the document behind an entry.
type Kind string

const (
	KindBill    Kind = "bill"
	KindPayment Kind = "payment"
)

// Source is a bill or payment as loaded from storage. Amount is always positive.
type Source struct {
	Kind        Kind
	PartnerID   int64
	PartnerName string
	PartnerRole catalog.PartnerRole
	// Vendor marks vendor bills and outgoing payments.
	Vendor  bool
	Number  string
	Date    time.Time
	DueDate *time.Time
	Amount  decimal.Decimal
}

// Entry is one ledger line with the partner balance after it.
type Entry struct {
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name"`
	Bucket      catalog.Bucket  `json:"bucket"`
	Kind        Kind            `json:"kind"`
	Number      string          `json:"number"`
	Date        time.Time       `json:"date"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"`
}

// Summary is the closing balance of one partner.
type Summary struct {
	PartnerID   int64           `json:"partner_id"`
	PartnerName string          `json:"partner_name"`
	Bucket      catalog.Bucket  `json:"bucket"`
	Billed      decimal.Decimal `json:"billed"`
	Paid        decimal.Decimal `json:"paid"`
	Balance     decimal.Decimal `json:"balance"`
}

// Build merges bills and payments into one stream ordered by partner, date
// and number. Bills add to the partner balance and payments subtract; the
// balance restarts at zero for each partner.
func Build(bills, payments []Source) []Entry {
	stream := make([]Entry, 0, len(bills)+len(payments))
	add := func(s Source, amount decimal.Decimal) {
		stream = append(stream, Entry{
			PartnerID:   s.PartnerID,
			PartnerName: s.PartnerName,
			Bucket:      catalog.BucketFor(s.PartnerRole, s.Vendor),
			Kind:        s.Kind,
			Number:      s.Number,
			Date:        s.Date,
			DueDate:     s.DueDate,
			Amount:      amount,
		})
	}
	for _, b := range bills {
		add(b, b.Amount)
	}
	for _, p := range payments {
		add(p, p.Amount.Neg())
	}

	sort.SliceStable(stream, func(i, j int) bool {
		a, b := stream[i], stream[j]
		if a.PartnerID != b.PartnerID {
			return a.PartnerID < b.PartnerID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Number < b.Number
	})

	var (
		current int64
		balance decimal.Decimal
	)
	for i := range stream {
		if i == 0 || stream[i].PartnerID != current {
			current = stream[i].PartnerID
			balance = decimal.Zero
		}
		balance = balance.Add(stream[i].Amount)
		stream[i].Balance = balance
	}
	return stream
}

// Summaries returns one closing balance per partner, in partner order.
func Summaries(entries []Entry) []Summary {
	var out []Summary
	for _, e := range entries {
		if len(out) == 0 || out[len(out)-1].PartnerID != e.PartnerID {
			out = append(out, Summary{PartnerID: e.PartnerID, PartnerName: e.PartnerName, Bucket: e.Bucket})
		}
		s := &out[len(out)-1]
		if e.Amount.IsNegative() {
			s.Paid = s.Paid.Add(e.Amount.Neg())
		} else {
			s.Billed = s.Billed.Add(e.Amount)
		}
		s.Balance = e.Balance
	}
	return out
}
