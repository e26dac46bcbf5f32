package catalog

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Resolver turns human-supplied references into catalog entities. Documents
// depend on this interface only, so the lookup key can change from names to
// ids without touching conversion logic.
type Resolver interface {
	Partner(ctx context.Context, key string) (Partner, error)
	Product(ctx context.Context, key string) (Product, error)
	Account(ctx context.Context, key string) (Account, error)
	// Tax resolves an optional tax. An empty key means untaxed and yields the zero Tax.
	Tax(ctx context.Context, key string) (Tax, error)
}

// NameResolver resolves by natural key: names for partners, products and
// accounts; name or numeric rate for taxes.
type NameResolver struct {
	repo Repository
}

// NewNameResolver builds a NameResolver.
func NewNameResolver(repo Repository) *NameResolver {
	return &NameResolver{repo: repo}
}

func (r *NameResolver) Partner(ctx context.Context, key string) (Partner, error) {
	return r.repo.PartnerByName(ctx, strings.TrimSpace(key))
}

func (r *NameResolver) Product(ctx context.Context, key string) (Product, error) {
	return r.repo.ProductByName(ctx, strings.TrimSpace(key))
}

func (r *NameResolver) Account(ctx context.Context, key string) (Account, error) {
	return r.repo.AccountByName(ctx, strings.TrimSpace(key))
}

func (r *NameResolver) Tax(ctx context.Context, key string) (Tax, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Tax{}, nil
	}
	tax, err := r.repo.TaxByName(ctx, key)
	if err == nil || !errors.Is(err, shared.ErrNotFound) {
		return tax, err
	}
	rate, perr := decimal.NewFromString(strings.TrimSuffix(key, "%"))
	if perr != nil {
		return Tax{}, shared.NotFound("tax", key)
	}
	tax, err = r.repo.TaxByRate(ctx, rate)
	if errors.Is(err, shared.ErrNotFound) {
		return Tax{}, shared.NotFound("tax", key)
	}
	return tax, err
}

// IDResolver resolves numeric ids rendered as strings.
type IDResolver struct {
	repo Repository
}

// NewIDResolver builds an IDResolver.
func NewIDResolver(repo Repository) *IDResolver {
	return &IDResolver{repo: repo}
}

func parseID(kind, key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, shared.NotFound(kind, key)
	}
	return id, nil
}

func (r *IDResolver) Partner(ctx context.Context, key string) (Partner, error) {
	id, err := parseID("partner", key)
	if err != nil {
		return Partner{}, err
	}
	return r.repo.PartnerByID(ctx, id)
}

func (r *IDResolver) Product(ctx context.Context, key string) (Product, error) {
	id, err := parseID("product", key)
	if err != nil {
		return Product{}, err
	}
	return r.repo.ProductByID(ctx, id)
}

func (r *IDResolver) Account(ctx context.Context, key string) (Account, error) {
	id, err := parseID("account", key)
	if err != nil {
		return Account{}, err
	}
	return r.repo.AccountByID(ctx, id)
}

func (r *IDResolver) Tax(ctx context.Context, key string) (Tax, error) {
	if strings.TrimSpace(key) == "" {
		return Tax{}, nil
	}
	id, err := parseID("tax", key)
	if err != nil {
		return Tax{}, err
	}
	return r.repo.TaxByID(ctx, id)
}
