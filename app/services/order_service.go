package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/emberwick/storefront/app/jobs"
	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/collection"
	"github.com/emberwick/storefront/pkg/crypt"
	"github.com/emberwick/storefront/pkg/event"
	"github.com/emberwick/storefront/pkg/logger"
	"github.com/emberwick/storefront/pkg/queue"
)

// EventOrderCreated is fired once per successful checkout with the
// models.Order as payload.
const EventOrderCreated = "order.created"

// Orders over this subtotal ship free; everything below pays the flat rate.
var (
	freeShippingThreshold = decimal.NewFromInt(50)
	flatShippingRate      = decimal.RequireFromString("5.99")
)

// CheckoutInput is the payload for placing an order.
type CheckoutInput struct {
	Email           string `json:"email"`
	ShippingAddress string `json:"shippingAddress"`
}

// CheckoutResult is the created order plus the opaque token customers use
// to look it up without an account.
type CheckoutResult struct {
	Order         models.Order `json:"order"`
	TrackingToken string       `json:"trackingToken"`
}

// OrderService turns carts into orders.
type OrderService struct {
	store store.Store
}

func NewOrderService(s store.Store) *OrderService {
	return &OrderService{store: s}
}

// Checkout snapshots the owner's cart into an order, then empties the
// cart. The two steps are separate writes: an order is never rolled back
// because the cart clear failed, so that failure is only logged.
func (s *OrderService) Checkout(ctx context.Context, owner store.Owner, in CheckoutInput) (CheckoutResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.ShippingAddress = strings.TrimSpace(in.ShippingAddress)
	if in.Email == "" {
		return CheckoutResult{}, store.Validationf("email is required")
	}
	if in.ShippingAddress == "" {
		return CheckoutResult{}, store.Validationf("shipping address is required")
	}

	lines, err := s.store.CartItems(ctx, owner)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(lines) == 0 {
		return CheckoutResult{}, store.Validationf("cart is empty")
	}

	subtotal := collection.Reduce(lines, decimal.Zero, func(sum decimal.Decimal, l models.CartLine) decimal.Decimal {
		price, perr := decimal.NewFromString(l.Product.Price)
		if perr != nil {
			return sum
		}
		return sum.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	})
	shipping := flatShippingRate
	if subtotal.GreaterThanOrEqual(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	order := models.Order{
		Status:          models.OrderStatusCreated,
		Email:           in.Email,
		ShippingAddress: in.ShippingAddress,
		Subtotal:        subtotal.StringFixed(2),
		Shipping:        shipping.StringFixed(2),
		Total:           subtotal.Add(shipping).StringFixed(2),
	}
	if id, ok := owner.UserID(); ok {
		order.UserID = &id
	}
	if sid, ok := owner.SessionID(); ok {
		order.SessionID = &sid
	}

	items := collection.Map(lines, func(l models.CartLine) models.OrderItem {
		return models.OrderItem{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.Product.Price,
		}
	})

	if err := s.store.CreateOrder(ctx, &order, items); err != nil {
		return CheckoutResult{}, err
	}

	if err := s.store.ClearCart(ctx, owner); err != nil {
		logger.Warn("order: cart clear after checkout failed",
			"order_id", order.ID, "error", err)
	}

	token, err := trackingToken(order.ID)
	if err != nil {
		logger.Warn("order: tracking token", "order_id", order.ID, "error", err)
	}

	event.Fire(EventOrderCreated, order)
	if err := queue.Dispatch(jobs.OrderConfirmation{
		OrderID: order.ID,
		Email:   order.Email,
		Total:   order.Total,
	}); err != nil {
		logger.Error("order: confirmation dispatch", "order_id", order.ID, "error", err)
	}

	return CheckoutResult{Order: order, TrackingToken: token}, nil
}

// Order returns one order or store.ErrNotFound.
func (s *OrderService) Order(ctx context.Context, id uint) (models.Order, error) {
	return s.store.Order(ctx, id)
}

// History returns the user's orders with their lines, newest first.
func (s *OrderService) History(ctx context.Context, userID uint) ([]models.OrderWithItems, error) {
	return s.store.OrdersByUser(ctx, userID)
}

// Track resolves a tracking token to its order. Any malformed or forged
// token reads as not found.
func (s *OrderService) Track(ctx context.Context, token string) (models.Order, error) {
	var claim trackClaim
	if err := crypt.DecryptJSON(token, &claim); err != nil {
		return models.Order{}, store.ErrNotFound
	}
	return s.store.Order(ctx, claim.OrderID)
}

type trackClaim struct {
	OrderID uint `json:"orderId"`
}

func trackingToken(orderID uint) (string, error) {
	return crypt.EncryptJSON(trackClaim{OrderID: orderID})
}
