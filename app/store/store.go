// Package store is the storage access layer for the storefront.
//
// Store is implemented twice: Memory keeps everything in ordered in-process
// maps (tests, DB_DRIVER=memory) and Gorm talks to a relational database
// through gorm. The implementation is chosen once at process start and
// injected into the services; the two are never mixed at runtime.
package store

import (
	"context"
	"time"

	"github.com/emberwick/storefront/app/models"
)

// Store is the full persistence contract of the storefront.
type Store interface {
	// ─── Users ───────────────────────────────────────────────────────────

	// CreateUser persists a new user. The Password field must already be
	// hashed. Returns ErrConflict when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error

	// UserByEmail returns the user with the given email or ErrNotFound.
	UserByEmail(ctx context.Context, email string) (models.User, error)

	// UserByID returns the user with the given id or ErrNotFound.
	UserByID(ctx context.Context, id uint) (models.User, error)

	// ─── Products ────────────────────────────────────────────────────────

	// Products returns the whole catalog.
	Products(ctx context.Context) ([]models.Product, error)

	// Product returns one product or ErrNotFound.
	Product(ctx context.Context, id uint) (models.Product, error)

	// FeaturedProducts returns products flagged for the homepage.
	FeaturedProducts(ctx context.Context) ([]models.Product, error)

	// ProductsByCategory filters by exact category. An unknown category
	// yields an empty slice, not an error.
	ProductsByCategory(ctx context.Context, category string) ([]models.Product, error)

	// SearchProducts matches the query case-insensitively as a substring
	// of name, description or scent. A NULL scent never matches.
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)

	// CreateProduct assigns a fresh id and persists the product.
	CreateProduct(ctx context.Context, product *models.Product) error

	// ─── Cart ────────────────────────────────────────────────────────────

	// CartItems lists the owner's cart joined with products, in stable
	// insertion order. A zero owner yields an empty slice.
	CartItems(ctx context.Context, owner Owner) ([]models.CartLine, error)

	// AddCartItem adds quantity of a product to the owner's cart. When a
	// row for (owner, product) already exists — matched strictly within
	// the same ownership kind — the quantities are merged into that row;
	// otherwise a new row is created. Returns a ValidationError for an
	// unknown product and ErrInvalidOwner for a zero owner.
	AddCartItem(ctx context.Context, owner Owner, productID uint, quantity int) (models.CartItem, error)

	// UpdateCartItem overwrites the quantity of a cart row. Quantity must
	// be at least 1. The caller is responsible for ownership checks; this
	// layer performs none.
	UpdateCartItem(ctx context.Context, id uint, quantity int) (models.CartItem, error)

	// RemoveCartItem deletes a cart row, reporting whether one existed.
	RemoveCartItem(ctx context.Context, id uint) (bool, error)

	// ClearCart deletes every row the owner holds. Idempotent.
	ClearCart(ctx context.Context, owner Owner) error

	// MigrateCart reassigns the anonymous session's rows to the user,
	// clearing their session id. Idempotent; rows whose product the user
	// already has in their cart are still moved as-is, so a (user,
	// product) pair can end up with two rows — quantities are not merged
	// at migration time.
	MigrateCart(ctx context.Context, sessionID string, userID uint) error

	// PurgeAnonymousCarts deletes session-owned rows created before the
	// cutoff, returning how many were removed.
	PurgeAnonymousCarts(ctx context.Context, before time.Time) (int64, error)

	// ─── Orders ──────────────────────────────────────────────────────────

	// CreateOrder persists the order header and its lines in a single
	// transaction. The returned order carries no joined items.
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error

	// Order returns one order (without lines) or ErrNotFound.
	Order(ctx context.Context, id uint) (models.Order, error)

	// OrdersByUser returns the user's orders, newest first, each joined
	// with its priced lines and their products.
	OrdersByUser(ctx context.Context, userID uint) ([]models.OrderWithItems, error)

	// UpdateOrderStatus sets the status and, when non-empty, the tracking
	// number. Returns the updated order or ErrNotFound.
	UpdateOrderStatus(ctx context.Context, id uint, status, trackingNumber string) (models.Order, error)
}
