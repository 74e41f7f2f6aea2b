// Package routes wires the HTTP surface of the storefront.
package routes

import (
	"time"

	"github.com/emberwick/storefront/app/controllers"
	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/metrics"
	"github.com/emberwick/storefront/pkg/middleware"
	"github.com/emberwick/storefront/pkg/router"
)

// RegisterAPI mounts every endpoint on the router. The store is the only
// injected dependency; the services and controllers hang off it.
func RegisterAPI(r *router.Router, st store.Store) error {
	authSvc := services.NewAuthService(st)
	cartSvc := services.NewCartService(st)
	catalogSvc := services.NewCatalogService(st)
	orderSvc := services.NewOrderService(st)

	products := controllers.NewProductController(catalogSvc)
	auth := controllers.NewAuthController(authSvc, cartSvc)
	carts := controllers.NewCartController(cartSvc)
	orders := controllers.NewOrderController(orderSvc)
	files := controllers.NewStorageController()

	gql, err := controllers.NewGraphQLController(catalogSvc)
	if err != nil {
		return err
	}

	requireUser := middleware.RequireUser(identity.UserID)
	throttleAuth := middleware.RateLimit(30, time.Minute)

	api := r.Group("/api")

	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))
	api.Post("/products", "products.create", ctx.Wrap(products.Create))

	api.Post("/auth/register", "auth.register", ctx.Wrap(auth.Register), throttleAuth)
	api.Post("/auth/login", "auth.login", ctx.Wrap(auth.Login), throttleAuth)
	api.Post("/auth/logout", "auth.logout", ctx.Wrap(auth.Logout))
	api.Get("/auth/me", "auth.me", ctx.Wrap(auth.Me), requireUser)

	api.Get("/cart", "cart.show", ctx.Wrap(carts.Show))
	api.Post("/cart", "cart.add", ctx.Wrap(carts.Add))
	api.Put("/cart/{id}", "cart.update", ctx.Wrap(carts.Update))
	api.Delete("/cart/{id}", "cart.remove", ctx.Wrap(carts.Remove))
	api.Delete("/cart", "cart.clear", ctx.Wrap(carts.Clear))
	api.Get("/cart/ws", "cart.ws", ctx.Wrap(carts.Socket))
	api.Get("/cart/events", "cart.events", ctx.Wrap(carts.Events))

	api.Post("/orders", "orders.create", ctx.Wrap(orders.Create))
	api.Get("/orders", "orders.index", ctx.Wrap(orders.Index), requireUser)
	api.Get("/orders/track/{token}", "orders.track", ctx.Wrap(orders.Track))
	api.Get("/orders/{id}", "orders.show", ctx.Wrap(orders.Show))

	api.Post("/graphql", "graphql", ctx.Wrap(gql.Query))

	r.Get("/storage/*", "storage.serve", ctx.Wrap(files.Serve))
	r.Get("/metrics", "metrics", metrics.Handler())

	return nil
}
