// Package catalog exposes the read-only master data documents reference:
// partners, accounts, products and taxes.
package catalog

import "github.com/shopspring/decimal"

// PartnerRole classifies a partner.
type PartnerRole string

const (
	RoleCustomer PartnerRole = "customer"
	RoleVendor   PartnerRole = "vendor"
	RoleBoth     PartnerRole = "both"
)

// Bucket is the ledger account bucket a partner's transactions post to.
type Bucket string

const (
	BucketDebtor   Bucket = "Debtor"
	BucketCreditor Bucket = "Creditor"
)

// Partner is a customer and/or vendor.
type Partner struct {
	ID    int64       `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email,omitempty"`
	Phone string      `json:"phone,omitempty"`
	Role  PartnerRole `json:"role"`
}

// IsVendor reports whether the partner may receive purchase documents.
func (p Partner) IsVendor() bool {
	return p.Role == RoleVendor || p.Role == RoleBoth
}

// IsCustomer reports whether the partner may receive sales documents.
func (p Partner) IsCustomer() bool {
	return p.Role == RoleCustomer || p.Role == RoleBoth
}

// BucketFor returns the partner's bucket. A partner playing both roles is
// bucketed by the direction of the document: vendor documents are Creditor.
func BucketFor(role PartnerRole, vendorDocument bool) Bucket {
	switch role {
	case RoleVendor:
		return BucketCreditor
	case RoleCustomer:
		return BucketDebtor
	}
	if vendorDocument {
		return BucketCreditor
	}
	return BucketDebtor
}

// AccountType classifies an account.
type AccountType string

const (
	AccountAssets      AccountType = "Assets"
	AccountLiabilities AccountType = "Liabilities"
	AccountIncome      AccountType = "Income"
	AccountExpense     AccountType = "Expense"
)

// Account is a named balance bucket.
type Account struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Type           AccountType     `json:"type"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
}

// Product is a sellable or purchasable item.
type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	SalePrice        decimal.Decimal `json:"sale_price"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	IncomeAccountID  *int64          `json:"income_account_id,omitempty"`
	ExpenseAccountID *int64          `json:"expense_account_id,omitempty"`
}

// Tax is a named percentage rate.
type Tax struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Rate decimal.Decimal `json:"rate"`
}
