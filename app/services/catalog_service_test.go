package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/cache"
)

func strptr(s string) *string { return &s }

func seedProduct(t *testing.T, s store.Store, name, price, category string, featured bool, scent *string) models.Product {
	t.Helper()
	p := models.Product{
		Name:     name,
		Price:    price,
		Category: category,
		Featured: featured,
		InStock:  true,
		Scent:    scent,
	}
	require.NoError(t, s.CreateProduct(context.Background(), &p))
	return p
}

func TestProductsFilterPrecedence(t *testing.T) {
	cache.Flush()
	s := store.NewMemory()
	svc := services.NewCatalogService(s)
	ctx := context.Background()

	lavender := seedProduct(t, s, "Lavender Dreams", "28.00", models.CategoryScented, true, strptr("Lavender & Vanilla"))
	seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	holiday := seedProduct(t, s, "Holiday Spice", "26.00", models.CategorySeasonal, false, strptr("Cinnamon & Orange"))

	// Featured wins even when category and search are also set.
	got, err := svc.Products(ctx, services.ProductFilter{
		Featured: true,
		Category: models.CategorySeasonal,
		Search:   "spice",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, lavender.ID, got[0].ID)

	// Category wins over search.
	got, err = svc.Products(ctx, services.ProductFilter{
		Category: models.CategorySeasonal,
		Search:   "lavender",
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, holiday.ID, got[0].ID)

	got, err = svc.Products(ctx, services.ProductFilter{Search: "cinnamon"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, holiday.ID, got[0].ID)

	got, err = svc.Products(ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestProductsCachesUnfilteredListing(t *testing.T) {
	cache.Flush()
	s := store.NewMemory()
	svc := services.NewCatalogService(s)
	ctx := context.Background()

	seedProduct(t, s, "Lavender Dreams", "28.00", models.CategoryScented, true, strptr("Lavender & Vanilla"))

	first, err := svc.Products(ctx, services.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Write behind the service's back: the cached listing must still be
	// served until something invalidates it.
	seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)

	cached, err := svc.Products(ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// Filtered listings bypass the cache entirely.
	byCategory, err := svc.Products(ctx, services.ProductFilter{Category: models.CategoryUnscented})
	require.NoError(t, err)
	assert.Len(t, byCategory, 1)
}

func TestCreateProductInvalidatesCache(t *testing.T) {
	cache.Flush()
	s := store.NewMemory()
	svc := services.NewCatalogService(s)
	ctx := context.Background()

	seedProduct(t, s, "Lavender Dreams", "28.00", models.CategoryScented, true, strptr("Lavender & Vanilla"))

	first, err := svc.Products(ctx, services.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, first, 1)

	p := models.Product{Name: "Rose Bergamot", Price: "32", Category: models.CategoryScented}
	require.NoError(t, svc.CreateProduct(ctx, &p))
	assert.Equal(t, "32.00", p.Price, "price must be normalised to two decimal places")

	fresh, err := svc.Products(ctx, services.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestCreateProductValidation(t *testing.T) {
	cache.Flush()
	svc := services.NewCatalogService(store.NewMemory())
	ctx := context.Background()

	cases := []models.Product{
		{Name: "", Price: "10.00", Category: models.CategoryScented},
		{Name: "No Category", Price: "10.00"},
		{Name: "Bad Price", Price: "ten dollars", Category: models.CategoryScented},
		{Name: "Negative", Price: "-1.00", Category: models.CategoryScented},
	}
	for _, p := range cases {
		p := p
		err := svc.CreateProduct(ctx, &p)
		assert.True(t, store.IsValidation(err), "product %q should be rejected", p.Name)
	}
}
