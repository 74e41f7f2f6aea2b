package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/event"
)

func TestCheckoutBelowFreeShippingThreshold(t *testing.T) {
	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-checkout")

	white := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := carts.Add(ctx, owner, white.ID, 2)
	require.NoError(t, err)

	result, err := orders.Checkout(ctx, owner, services.CheckoutInput{
		Email:           "jane@example.com",
		ShippingAddress: "1 Candle Lane",
	})
	require.NoError(t, err)

	assert.Equal(t, "44.00", result.Order.Subtotal)
	assert.Equal(t, "5.99", result.Order.Shipping)
	assert.Equal(t, "49.99", result.Order.Total)
	assert.Equal(t, models.OrderStatusCreated, result.Order.Status)

	// Checkout consumes the cart.
	cart, err := carts.Cart(ctx, owner)
	require.NoError(t, err)
	assert.Zero(t, cart.ItemCount)
}

func TestCheckoutFreeShippingAtThreshold(t *testing.T) {
	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-free")

	// 28.00 + 22.00 = exactly the 50.00 threshold, which ships free.
	lavender := seedProduct(t, s, "Lavender Dreams", "28.00", models.CategoryScented, true, strptr("Lavender & Vanilla"))
	white := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := carts.Add(ctx, owner, lavender.ID, 1)
	require.NoError(t, err)
	_, err = carts.Add(ctx, owner, white.ID, 1)
	require.NoError(t, err)

	result, err := orders.Checkout(ctx, owner, services.CheckoutInput{
		Email:           "jane@example.com",
		ShippingAddress: "1 Candle Lane",
	})
	require.NoError(t, err)

	assert.Equal(t, "50.00", result.Order.Subtotal)
	assert.Equal(t, "0.00", result.Order.Shipping)
	assert.Equal(t, "50.00", result.Order.Total)
}

func TestCheckoutValidation(t *testing.T) {
	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-validate")

	in := services.CheckoutInput{Email: "jane@example.com", ShippingAddress: "1 Candle Lane"}

	_, err := orders.Checkout(ctx, owner, services.CheckoutInput{ShippingAddress: in.ShippingAddress})
	assert.True(t, store.IsValidation(err))

	_, err = orders.Checkout(ctx, owner, services.CheckoutInput{Email: in.Email})
	assert.True(t, store.IsValidation(err))

	// Valid input but nothing in the cart.
	_, err = orders.Checkout(ctx, owner, in)
	assert.True(t, store.IsValidation(err))

	// An empty cart must never produce an order.
	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err = carts.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)
	result, err := orders.Checkout(ctx, owner, in)
	require.NoError(t, err)
	assert.NotZero(t, result.Order.ID)
}

func TestCheckoutSnapshotsPrices(t *testing.T) {
	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.UserOwner(4)

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := carts.Add(ctx, owner, p.ID, 2)
	require.NoError(t, err)

	result, err := orders.Checkout(ctx, owner, services.CheckoutInput{
		Email:           "jane@example.com",
		ShippingAddress: "1 Candle Lane",
	})
	require.NoError(t, err)

	history, err := orders.History(ctx, 4)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].Items, 1)
	assert.Equal(t, result.Order.ID, history[0].ID)
	assert.Equal(t, "22.00", history[0].Items[0].Price)
	assert.Equal(t, 2, history[0].Items[0].Quantity)
}

func TestCheckoutFiresOrderCreated(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-fire")

	var created []models.Order
	event.Listen(services.EventOrderCreated, func(payload interface{}) {
		if order, ok := payload.(models.Order); ok {
			created = append(created, order)
		}
	})

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := carts.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)

	result, err := orders.Checkout(ctx, owner, services.CheckoutInput{
		Email:           "jane@example.com",
		ShippingAddress: "1 Candle Lane",
	})
	require.NoError(t, err)

	require.Len(t, created, 1)
	assert.Equal(t, result.Order.ID, created[0].ID)
}

func TestTrackingTokenRoundTrip(t *testing.T) {
	s := store.NewMemory()
	carts := services.NewCartService(s)
	orders := services.NewOrderService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-track")

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := carts.Add(ctx, owner, p.ID, 1)
	require.NoError(t, err)

	result, err := orders.Checkout(ctx, owner, services.CheckoutInput{
		Email:           "jane@example.com",
		ShippingAddress: "1 Candle Lane",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.TrackingToken)

	tracked, err := orders.Track(ctx, result.TrackingToken)
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, tracked.ID)

	// Forged or garbled tokens read as not found, never as a crypto error.
	_, err = orders.Track(ctx, "not-a-real-token")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
