package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/collection"
	"github.com/emberwick/storefront/pkg/event"
)

// EventCartChanged is fired after any mutation of a cart. The payload is a
// CartChanged; the websocket and SSE feeds fan it out to connected tabs.
const EventCartChanged = "cart.changed"

// CartChanged describes a cart mutation to live listeners.
type CartChanged struct {
	Owner     store.Owner `json:"-"`
	OwnerKey  string      `json:"owner"`
	ItemCount int         `json:"itemCount"`
}

// CartSummary is a cart with its derived totals, the shape the cart
// endpoints return.
type CartSummary struct {
	Items     []models.CartLine `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  string            `json:"subtotal"`
}

// CartService wraps the cart portion of the store and announces every
// mutation on the event bus.
type CartService struct {
	store store.Store
}

func NewCartService(s store.Store) *CartService {
	return &CartService{store: s}
}

// Cart returns the owner's cart with totals.
func (s *CartService) Cart(ctx context.Context, owner store.Owner) (CartSummary, error) {
	lines, err := s.store.CartItems(ctx, owner)
	if err != nil {
		return CartSummary{}, err
	}
	return summarize(lines), nil
}

// Add puts quantity of a product into the owner's cart, merging with an
// existing row for the same product.
func (s *CartService) Add(ctx context.Context, owner store.Owner, productID uint, quantity int) (models.CartItem, error) {
	if quantity < 1 {
		quantity = 1
	}
	item, err := s.store.AddCartItem(ctx, owner, productID, quantity)
	if err != nil {
		return models.CartItem{}, err
	}
	s.announce(ctx, owner)
	return item, nil
}

// UpdateQuantity overwrites a row's quantity.
func (s *CartService) UpdateQuantity(ctx context.Context, owner store.Owner, itemID uint, quantity int) (models.CartItem, error) {
	item, err := s.store.UpdateCartItem(ctx, itemID, quantity)
	if err != nil {
		return models.CartItem{}, err
	}
	s.announce(ctx, owner)
	return item, nil
}

// Remove deletes a row, reporting whether it existed.
func (s *CartService) Remove(ctx context.Context, owner store.Owner, itemID uint) (bool, error) {
	removed, err := s.store.RemoveCartItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	if removed {
		s.announce(ctx, owner)
	}
	return removed, nil
}

// Clear empties the owner's cart.
func (s *CartService) Clear(ctx context.Context, owner store.Owner) error {
	if err := s.store.ClearCart(ctx, owner); err != nil {
		return err
	}
	s.announce(ctx, owner)
	return nil
}

// Migrate moves an anonymous session's cart to the user, typically right
// after login or registration.
func (s *CartService) Migrate(ctx context.Context, sessionID string, userID uint) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.MigrateCart(ctx, sessionID, userID); err != nil {
		return err
	}
	s.announce(ctx, store.UserOwner(userID))
	return nil
}

func (s *CartService) announce(ctx context.Context, owner store.Owner) {
	lines, err := s.store.CartItems(ctx, owner)
	if err != nil {
		return
	}
	event.Fire(EventCartChanged, CartChanged{
		Owner:     owner,
		OwnerKey:  owner.String(),
		ItemCount: itemCount(lines),
	})
}

func itemCount(lines []models.CartLine) int {
	return collection.Reduce(lines, 0, func(n int, l models.CartLine) int {
		return n + l.Quantity
	})
}

func summarize(lines []models.CartLine) CartSummary {
	subtotal := collection.Reduce(lines, decimal.Zero, func(sum decimal.Decimal, l models.CartLine) decimal.Decimal {
		price, err := decimal.NewFromString(l.Product.Price)
		if err != nil {
			return sum
		}
		return sum.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	})
	return CartSummary{
		Items:     lines,
		ItemCount: itemCount(lines),
		Subtotal:  subtotal.StringFixed(2),
	}
}
