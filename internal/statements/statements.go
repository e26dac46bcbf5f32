// Package statements builds the cash-basis profit and loss statement and the
// simplified balance sheet.
package statements

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTotals sums payments by direction.
type PaymentTotals struct {
	Received decimal.Decimal
	Sent     decimal.Decimal
}

// BillTotals sums bills by direction and status. Cancelled bills are excluded.
type BillTotals struct {
	// OpenSales and OpenVendor sum posted (unpaid) bills.
	OpenSales  decimal.Decimal
	OpenVendor decimal.Decimal
	// AllSales and AllVendor sum posted and paid bills.
	AllSales  decimal.Decimal
	AllVendor decimal.Decimal
}

// ProfitAndLoss is realised income against realised expense.
type ProfitAndLoss struct {
	From       *time.Time      `json:"from,omitempty"`
	To         *time.Time      `json:"to,omitempty"`
	Income     decimal.Decimal `json:"income"`
	Expense    decimal.Decimal `json:"expense"`
	ProfitLoss decimal.Decimal `json:"profitLoss"`
}

// Assets section of the balance sheet.
type Assets struct {
	CashAndBank        decimal.Decimal `json:"cashAndBank"`
	AccountsReceivable decimal.Decimal `json:"accountsReceivable"`
	Total              decimal.Decimal `json:"total"`
}

// Liabilities section of the balance sheet.
type Liabilities struct {
	AccountsPayable decimal.Decimal `json:"accountsPayable"`
	Total           decimal.Decimal `json:"total"`
}

// Equity section of the balance sheet.
type Equity struct {
	RetainedEarnings decimal.Decimal `json:"retainedEarnings"`
	Total            decimal.Decimal `json:"total"`
}

// BalanceSheet is a snapshot of the books. Balance is diagnostic only and is
// not expected to be zero.
type BalanceSheet struct {
	Assets      Assets          `json:"assets"`
	Liabilities Liabilities     `json:"liabilities"`
	Equity      Equity          `json:"equity"`
	Balance     decimal.Decimal `json:"balance"`
}

// BuildProfitAndLoss computes income - expense from payment totals.
func BuildProfitAndLoss(p PaymentTotals) ProfitAndLoss {
	return ProfitAndLoss{
		Income:     p.Received,
		Expense:    p.Sent,
		ProfitLoss: p.Received.Sub(p.Sent),
	}
}

// BuildBalanceSheet assembles the balance sheet from cash on Assets accounts
// and bill totals.
func BuildBalanceSheet(cashAndBank decimal.Decimal, b BillTotals) BalanceSheet {
	assets := Assets{CashAndBank: cashAndBank, AccountsReceivable: b.OpenSales}
	assets.Total = assets.CashAndBank.Add(assets.AccountsReceivable)
	liabilities := Liabilities{AccountsPayable: b.OpenVendor, Total: b.OpenVendor}
	retained := b.AllSales.Sub(b.AllVendor)
	equity := Equity{RetainedEarnings: retained, Total: retained}
	return BalanceSheet{
		Assets:      assets,
		Liabilities: liabilities,
		Equity:      equity,
		Balance:     assets.Total.Sub(liabilities.Total.Add(equity.Total)),
	}
}
