package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/cache"
)

const (
	productsCacheKey = "products:all"
	productsCacheTTL = 5 * time.Minute
)

// ProductFilter selects a slice of the catalog. When several fields are
// set, exactly one applies: featured wins over category, category over
// search. This mirrors how the storefront UI builds its queries.
type ProductFilter struct {
	Featured bool
	Category string
	Search   string
}

// CatalogService serves the product catalog, with a read-through cache in
// front of the unfiltered listing.
type CatalogService struct {
	store store.Store
}

func NewCatalogService(s store.Store) *CatalogService {
	return &CatalogService{store: s}
}

// Products returns the catalog slice selected by the filter.
func (s *CatalogService) Products(ctx context.Context, f ProductFilter) ([]models.Product, error) {
	switch {
	case f.Featured:
		return s.store.FeaturedProducts(ctx)
	case f.Category != "":
		return s.store.ProductsByCategory(ctx, f.Category)
	case f.Search != "":
		return s.store.SearchProducts(ctx, f.Search)
	}

	var cached []models.Product
	if cache.Get(productsCacheKey, &cached) {
		return cached, nil
	}

	products, err := s.store.Products(ctx)
	if err != nil {
		return nil, err
	}
	cache.Set(productsCacheKey, products, productsCacheTTL)
	return products, nil
}

// Product returns a single product or store.ErrNotFound.
func (s *CatalogService) Product(ctx context.Context, id uint) (models.Product, error) {
	return s.store.Product(ctx, id)
}

// CreateProduct validates and persists a new product, then drops the
// listing cache.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return store.Validationf("name is required")
	}
	if p.Category == "" {
		return store.Validationf("category is required")
	}
	price, err := decimal.NewFromString(p.Price)
	if err != nil || price.IsNegative() {
		return store.Validationf("price must be a non-negative decimal")
	}
	p.Price = price.StringFixed(2)

	if err := s.store.CreateProduct(ctx, p); err != nil {
		return err
	}
	cache.Del(productsCacheKey)
	return nil
}
