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

func TestCartSummaryTotals(t *testing.T) {
	s := store.NewMemory()
	svc := services.NewCartService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-totals")

	lavender := seedProduct(t, s, "Lavender Dreams", "28.00", models.CategoryScented, true, strptr("Lavender & Vanilla"))
	white := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)

	_, err := svc.Add(ctx, owner, lavender.ID, 2)
	require.NoError(t, err)
	_, err = svc.Add(ctx, owner, white.ID, 1)
	require.NoError(t, err)

	summary, err := svc.Cart(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, "78.00", summary.Subtotal)
	assert.Len(t, summary.Items, 2)
}

func TestAddClampsQuantityToOne(t *testing.T) {
	s := store.NewMemory()
	svc := services.NewCartService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-clamp")

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)

	item, err := svc.Add(ctx, owner, p.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, item.Quantity)

	item, err = svc.Add(ctx, owner, p.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)
}

func TestMutationsAnnounceOnEventBus(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	s := store.NewMemory()
	svc := services.NewCartService(s)
	ctx := context.Background()
	owner := store.SessionOwner("s-events")

	var changes []services.CartChanged
	event.Listen(services.EventCartChanged, func(payload interface{}) {
		if change, ok := payload.(services.CartChanged); ok {
			changes = append(changes, change)
		}
	})

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)

	item, err := svc.Add(ctx, owner, p.ID, 2)
	require.NoError(t, err)
	_, err = svc.UpdateQuantity(ctx, owner, item.ID, 5)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, owner))

	require.Len(t, changes, 3)
	assert.Equal(t, 2, changes[0].ItemCount)
	assert.Equal(t, 5, changes[1].ItemCount)
	assert.Equal(t, 0, changes[2].ItemCount)
	assert.Equal(t, owner, changes[0].Owner)
}

func TestRemoveMissingItemIsSilent(t *testing.T) {
	event.Flush()
	t.Cleanup(event.Flush)

	svc := services.NewCartService(store.NewMemory())

	fired := 0
	event.Listen(services.EventCartChanged, func(interface{}) { fired++ })

	removed, err := svc.Remove(context.Background(), store.SessionOwner("s-remove"), 999)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, fired, "removing nothing must not announce a change")
}

func TestMigrateMovesSessionCartToUser(t *testing.T) {
	s := store.NewMemory()
	svc := services.NewCartService(s)
	ctx := context.Background()

	p := seedProduct(t, s, "Pure White", "22.00", models.CategoryUnscented, false, nil)
	_, err := svc.Add(ctx, store.SessionOwner("s-migrate"), p.ID, 3)
	require.NoError(t, err)

	require.NoError(t, svc.Migrate(ctx, "s-migrate", 7))

	userCart, err := svc.Cart(ctx, store.UserOwner(7))
	require.NoError(t, err)
	assert.Equal(t, 3, userCart.ItemCount)

	sessionCart, err := svc.Cart(ctx, store.SessionOwner("s-migrate"))
	require.NoError(t, err)
	assert.Zero(t, sessionCart.ItemCount)

	// No session means nothing to migrate; not an error.
	assert.NoError(t, svc.Migrate(ctx, "", 7))
}
