// Package catalogtest provides an in-memory catalog repository for tests.
package catalogtest

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Memory implements catalog.Repository over maps keyed by id.
type Memory struct {
	Partners map[int64]catalog.Partner
	Accounts map[int64]catalog.Account
	Products map[int64]catalog.Product
	Taxes    map[int64]catalog.Tax
}

var _ catalog.Repository = (*Memory)(nil)

// New returns an empty catalog.
func New() *Memory {
	return &Memory{
		Partners: map[int64]catalog.Partner{},
		Accounts: map[int64]catalog.Account{},
		Products: map[int64]catalog.Product{},
		Taxes:    map[int64]catalog.Tax{},
	}
}

// Seeded returns a catalog with a small, fixed chart:
//
//	partners: 1 Azure Interior (vendor), 2 Deco Addict (customer), 3 Gemini Furniture (both)
//	accounts: 1 Purchase Expense, 2 Bank (Assets), 3 Product Sales, 4 Accounts Payable
//	products: 1 Desk (income 3, expense 1), 2 Chair (no default accounts)
//	taxes:    1 VAT 5%, 2 VAT 15%
func Seeded() *Memory {
	m := New()
	m.AddPartner(catalog.Partner{ID: 1, Name: "Azure Interior", Role: catalog.RoleVendor})
	m.AddPartner(catalog.Partner{ID: 2, Name: "Deco Addict", Role: catalog.RoleCustomer})
	m.AddPartner(catalog.Partner{ID: 3, Name: "Gemini Furniture", Role: catalog.RoleBoth})
	m.AddAccount(catalog.Account{ID: 1, Name: "Purchase Expense", Type: catalog.AccountExpense})
	m.AddAccount(catalog.Account{ID: 2, Name: "Bank", Type: catalog.AccountAssets, CurrentBalance: decimal.NewFromInt(100000)})
	m.AddAccount(catalog.Account{ID: 3, Name: "Product Sales", Type: catalog.AccountIncome})
	m.AddAccount(catalog.Account{ID: 4, Name: "Accounts Payable", Type: catalog.AccountLiabilities})
	income, expense := int64(3), int64(1)
	m.AddProduct(catalog.Product{ID: 1, Name: "Desk", SalePrice: decimal.NewFromInt(20000), CostPrice: decimal.NewFromInt(17000), IncomeAccountID: &income, ExpenseAccountID: &expense})
	m.AddProduct(catalog.Product{ID: 2, Name: "Chair", SalePrice: decimal.NewFromInt(300), CostPrice: decimal.NewFromInt(150)})
	m.AddTax(catalog.Tax{ID: 1, Name: "VAT 5%", Rate: decimal.NewFromInt(5)})
	m.AddTax(catalog.Tax{ID: 2, Name: "VAT 15%", Rate: decimal.NewFromInt(15)})
	return m
}

func (m *Memory) AddPartner(p catalog.Partner) { m.Partners[p.ID] = p }
func (m *Memory) AddAccount(a catalog.Account) { m.Accounts[a.ID] = a }
func (m *Memory) AddProduct(p catalog.Product) { m.Products[p.ID] = p }
func (m *Memory) AddTax(t catalog.Tax)         { m.Taxes[t.ID] = t }

func sortedValues[T any](in map[int64]T) []T {
	ids := make([]int64, 0, len(in))
	for id := range in {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, in[id])
	}
	return out
}

func (m *Memory) ListPartners(context.Context) ([]catalog.Partner, error) {
	return sortedValues(m.Partners), nil
}

func (m *Memory) ListAccounts(context.Context) ([]catalog.Account, error) {
	return sortedValues(m.Accounts), nil
}

func (m *Memory) ListProducts(context.Context) ([]catalog.Product, error) {
	return sortedValues(m.Products), nil
}

func (m *Memory) ListTaxes(context.Context) ([]catalog.Tax, error) {
	return sortedValues(m.Taxes), nil
}

func (m *Memory) PartnerByID(_ context.Context, id int64) (catalog.Partner, error) {
	if p, ok := m.Partners[id]; ok {
		return p, nil
	}
	return catalog.Partner{}, shared.NotFound("partner", id)
}

func (m *Memory) PartnerByName(_ context.Context, name string) (catalog.Partner, error) {
	for _, p := range sortedValues(m.Partners) {
		if p.Name == name {
			return p, nil
		}
	}
	return catalog.Partner{}, shared.NotFound("partner", name)
}

func (m *Memory) AccountByID(_ context.Context, id int64) (catalog.Account, error) {
	if a, ok := m.Accounts[id]; ok {
		return a, nil
	}
	return catalog.Account{}, shared.NotFound("account", id)
}

func (m *Memory) AccountByName(_ context.Context, name string) (catalog.Account, error) {
	for _, a := range sortedValues(m.Accounts) {
		if a.Name == name {
			return a, nil
		}
	}
	return catalog.Account{}, shared.NotFound("account", name)
}

func (m *Memory) ProductByID(_ context.Context, id int64) (catalog.Product, error) {
	if p, ok := m.Products[id]; ok {
		return p, nil
	}
	return catalog.Product{}, shared.NotFound("product", id)
}

func (m *Memory) ProductByName(_ context.Context, name string) (catalog.Product, error) {
	for _, p := range sortedValues(m.Products) {
		if p.Name == name {
			return p, nil
		}
	}
	return catalog.Product{}, shared.NotFound("product", name)
}

func (m *Memory) TaxByID(_ context.Context, id int64) (catalog.Tax, error) {
	if t, ok := m.Taxes[id]; ok {
		return t, nil
	}
	return catalog.Tax{}, shared.NotFound("tax", id)
}

func (m *Memory) TaxByName(_ context.Context, name string) (catalog.Tax, error) {
	for _, t := range sortedValues(m.Taxes) {
		if t.Name == name {
			return t, nil
		}
	}
	return catalog.Tax{}, shared.NotFound("tax", name)
}

func (m *Memory) TaxByRate(_ context.Context, rate decimal.Decimal) (catalog.Tax, error) {
	for _, t := range sortedValues(m.Taxes) {
		if t.Rate.Equal(rate) {
			return t, nil
		}
	}
	return catalog.Tax{}, shared.NotFound("tax", rate.String())
}
