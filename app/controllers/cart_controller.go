package controllers

import (
	"time"

	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/live"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/sse"
	"github.com/emberwick/storefront/pkg/ws"
)

// CartController serves the cart of whoever the request acts as, resolved
// per request by the identity package.
type CartController struct {
	carts *services.CartService
}

func NewCartController(carts *services.CartService) *CartController {
	return &CartController{carts: carts}
}

// Show returns the cart with its totals.
func (cc *CartController) Show(c *ctx.Context) {
	summary, err := cc.carts.Cart(c.Context(), identity.Owner(c.R))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(summary)
}

type addItemInput struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// Add puts a product into the cart, merging with an existing line.
func (cc *CartController) Add(c *ctx.Context) {
	var in addItemInput
	if !c.BindJSON(&in) {
		return
	}
	item, err := cc.carts.Add(c.Context(), identity.Owner(c.R), in.ProductID, in.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Created(item)
}

type updateItemInput struct {
	Quantity int `json:"quantity" validate:"required"`
}

// Update overwrites a line's quantity.
func (cc *CartController) Update(c *ctx.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in updateItemInput
	if !c.BindJSON(&in) {
		return
	}
	item, err := cc.carts.UpdateQuantity(c.Context(), identity.Owner(c.R), id, in.Quantity)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(item)
}

// Remove deletes a line.
func (cc *CartController) Remove(c *ctx.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	removed, err := cc.carts.Remove(c.Context(), identity.Owner(c.R), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	if !removed {
		c.NotFound()
		return
	}
	c.Success(map[string]interface{}{"removed": true})
}

// Clear empties the cart.
func (cc *CartController) Clear(c *ctx.Context) {
	if err := cc.carts.Clear(c.Context(), identity.Owner(c.R)); err != nil {
		respondErr(c, err)
		return
	}
	c.Success(map[string]interface{}{"cleared": true})
}

// Socket upgrades to a WebSocket carrying cart-change frames for every
// owner; clients filter on the owner key.
func (cc *CartController) Socket(c *ctx.Context) {
	ws.Upgrade(c.W, c.R, live.CartHub)
}

// Events streams cart changes for this request's owner over SSE.
func (cc *CartController) Events(c *ctx.Context) {
	owner := identity.Owner(c.R)
	stream := sse.New(c.W, c.R)
	if stream == nil {
		return
	}

	sub := live.Subscribe()
	defer live.Unsubscribe(sub)

	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.R.Context().Done():
			return
		case <-heartbeat.C:
			stream.Comment("ping")
		case change, ok := <-sub:
			if !ok {
				return
			}
			if change.Owner != owner {
				continue
			}
			if err := stream.Send("cart", change); err != nil {
				return
			}
			if stream.IsClosed() {
				return
			}
		}
	}
}
