package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/catalog"
	"github.com/odyssey-erp/odyssey-books/internal/catalog/catalogtest"
	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

func TestNameResolverTax(t *testing.T) {
	r := catalog.NewNameResolver(catalogtest.Seeded())
	ctx := context.Background()

	byName, err := r.Tax(ctx, "VAT 15%")
	require.NoError(t, err)
	require.Equal(t, int64(2), byName.ID)

	byRate, err := r.Tax(ctx, "5")
	require.NoError(t, err)
	require.Equal(t, int64(1), byRate.ID)

	withPercent, err := r.Tax(ctx, "5%")
	require.NoError(t, err)
	require.Equal(t, int64(1), withPercent.ID)

	none, err := r.Tax(ctx, "")
	require.NoError(t, err)
	require.Zero(t, none.ID)
	require.True(t, none.Rate.IsZero())

	_, err = r.Tax(ctx, "7")
	var nf *shared.NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Equal(t, "tax", nf.Kind)
	require.Equal(t, "7", nf.Key)
}

func TestNameResolverEntities(t *testing.T) {
	r := catalog.NewNameResolver(catalogtest.Seeded())
	ctx := context.Background()

	p, err := r.Product(ctx, " Desk ")
	require.NoError(t, err)
	require.Equal(t, int64(1), p.ID)

	a, err := r.Account(ctx, "Bank")
	require.NoError(t, err)
	require.Equal(t, catalog.AccountAssets, a.Type)

	_, err = r.Partner(ctx, "Nobody")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestIDResolver(t *testing.T) {
	r := catalog.NewIDResolver(catalogtest.Seeded())
	ctx := context.Background()

	p, err := r.Product(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "Chair", p.Name)

	_, err = r.Account(ctx, "Bank")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBucketFor(t *testing.T) {
	require.Equal(t, catalog.BucketCreditor, catalog.BucketFor(catalog.RoleVendor, false))
	require.Equal(t, catalog.BucketDebtor, catalog.BucketFor(catalog.RoleCustomer, true))
	require.Equal(t, catalog.BucketCreditor, catalog.BucketFor(catalog.RoleBoth, true))
	require.Equal(t, catalog.BucketDebtor, catalog.BucketFor(catalog.RoleBoth, false))
}
