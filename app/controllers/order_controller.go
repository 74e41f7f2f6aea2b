package controllers

import (
	"time"

	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/middleware"
	"github.com/emberwick/storefront/pkg/resource"
)

// OrderController serves checkout, order lookup and order history.
type OrderController struct {
	orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// checkoutInput accepts the header either flat or nested under "order",
// the shape older clients send alongside an "items" array. Client items
// are always ignored: lines and prices come from the server-side cart.
type checkoutInput struct {
	services.CheckoutInput
	Order *services.CheckoutInput `json:"order"`
}

// Create places an order from the current cart and empties the cart.
func (oc *OrderController) Create(c *ctx.Context) {
	var in checkoutInput
	if !c.BindJSON(&in) {
		return
	}
	header := in.CheckoutInput
	if in.Order != nil {
		header = *in.Order
	}
	result, err := oc.orders.Checkout(c.Context(), identity.Owner(c.R), header)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Created(result)
}

// Show returns one order by id.
func (oc *OrderController) Show(c *ctx.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	order, err := oc.orders.Order(c.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(order)
}

// Index returns the authenticated user's order history, newest first.
func (oc *OrderController) Index(c *ctx.Context) {
	id, ok := middleware.UserIDFromCtx(c.Context())
	if !ok {
		c.Unauthorized()
		return
	}
	orders, err := oc.orders.History(c.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(orders)
}

// trackedOrderResource is the public view of a tracked order. Anyone
// holding the token sees fulfilment progress and the amounts, never the
// customer's email or address.
type trackedOrderResource struct{ resource.Base }

func (trackedOrderResource) ToArray(v interface{}) resource.Map {
	o := v.(models.Order)
	return resource.Map{
		"id":             o.ID,
		"status":         o.Status,
		"trackingNumber": o.TrackingNumber,
		"subtotal":       o.Subtotal,
		"shipping":       o.Shipping,
		"total":          o.Total,
		"placedAt":       o.CreatedAt.Format(time.RFC3339),
	}
}

// Track resolves an opaque tracking token to its order, for customers
// without an account.
func (oc *OrderController) Track(c *ctx.Context) {
	order, err := oc.orders.Track(c.Context(), c.Param("token"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(resource.New(trackedOrderResource{}, order))
}
