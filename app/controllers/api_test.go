package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/routes"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/database/seeders"
	"github.com/emberwick/storefront/pkg/cache"
	"github.com/emberwick/storefront/pkg/event"
	"github.com/emberwick/storefront/pkg/router"
	"github.com/emberwick/storefront/pkg/session"
	"github.com/emberwick/storefront/pkg/testkit"
)

// newAPI builds the full HTTP surface on a fresh in-memory store seeded
// with the standard catalog. Product ids follow seed order, so Lavender
// Dreams is 1 and Pure White is 5.
func newAPI(t *testing.T) http.Handler {
	t.Helper()
	cache.Flush()
	event.Flush()

	s := store.NewMemory()
	for _, p := range seeders.CatalogProducts() {
		p := p
		require.NoError(t, s.CreateProduct(context.Background(), &p))
	}

	r := router.New()
	r.Use(session.Middleware(session.DefaultOptions()))
	require.NoError(t, routes.RegisterAPI(r, s))
	return r.Handler()
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  map[string]string
}

func call(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dest))
}

func TestProductListingAndFilters(t *testing.T) {
	h := newAPI(t)

	cases := []struct {
		path string
		want int
	}{
		{"/api/products", 6},
		{"/api/products?featured=true", 3},
		{"/api/products?category=seasonal", 1},
		{"/api/products?category=nonexistent", 0},
		{"/api/products?search=bergamot", 1},
	}
	for _, tc := range cases {
		rec, env := call(t, h, http.MethodGet, tc.path, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, tc.path)

		var products []map[string]any
		decodeData(t, env, &products)
		assert.Len(t, products, tc.want, tc.path)
	}
}

func TestProductShow(t *testing.T) {
	h := newAPI(t)

	rec, env := call(t, h, http.MethodGet, "/api/products/1", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var product map[string]any
	decodeData(t, env, &product)
	assert.Equal(t, "Lavender Dreams", product["name"])
	assert.Equal(t, "28.00", product["price"])

	rec, env = call(t, h, http.MethodGet, "/api/products/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", env.Message)

	rec, _ = call(t, h, http.MethodGet, "/api/products/banana", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateProductDefaultsToInStock(t *testing.T) {
	h := newAPI(t)

	// No inStock key in the payload: the product comes out in stock.
	rec, env := call(t, h, http.MethodPost, "/api/products", map[string]any{
		"name": "Amber Glow", "price": "34.00", "category": "scented",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var product map[string]any
	decodeData(t, env, &product)
	assert.Equal(t, true, product["inStock"])

	// An explicit false is honoured, not rewritten.
	rec, env = call(t, h, http.MethodPost, "/api/products", map[string]any{
		"name": "Smoked Oak", "price": "36.00", "category": "scented",
		"inStock": false,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	decodeData(t, env, &product)
	assert.Equal(t, false, product["inStock"])
}

func TestAnonymousCartFlow(t *testing.T) {
	h := newAPI(t)
	anon := map[string]string{identity.HeaderSessionID: "tab-1"}

	rec, env := call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 5, "quantity": 2}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	var item struct {
		ID       uint `json:"id"`
		Quantity int  `json:"quantity"`
	}
	decodeData(t, env, &item)
	assert.Equal(t, 2, item.Quantity)

	// Same product again merges instead of adding a second line.
	rec, env = call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 5, "quantity": 1}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	var cart struct {
		Items     []json.RawMessage `json:"items"`
		ItemCount int               `json:"itemCount"`
		Subtotal  string            `json:"subtotal"`
	}
	rec, env = call(t, h, http.MethodGet, "/api/cart", nil, anon)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.ItemCount)
	assert.Equal(t, "66.00", cart.Subtotal)

	// A different tab sees its own empty cart.
	rec, env = call(t, h, http.MethodGet, "/api/cart", nil,
		map[string]string{identity.HeaderSessionID: "tab-2"})
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	assert.Zero(t, cart.ItemCount)

	// Update and remove by line id.
	rec, _ = call(t, h, http.MethodPut, fmt.Sprintf("/api/cart/%d", item.ID),
		map[string]any{"quantity": 1}, anon)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", item.ID), nil, anon)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, _ = call(t, h, http.MethodDelete, fmt.Sprintf("/api/cart/%d", item.ID), nil, anon)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginMigratesAnonymousCart(t *testing.T) {
	h := newAPI(t)
	anon := map[string]string{identity.HeaderSessionID: "guest-7"}

	// Shop anonymously.
	rec, _ := call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 1, "quantity": 2}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Register with the same anonymous identity on the request.
	rec, env := call(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"email":     "jane@example.com",
		"password":  "secret1",
		"firstName": "Jane",
		"lastName":  "Doe",
	}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Log in from a clean client; the account cart has the migrated items.
	rec, env = call(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	require.NotEmpty(t, login.Token)

	rec, env = call(t, h, http.MethodGet, "/api/cart", nil,
		map[string]string{"Authorization": "Bearer " + login.Token})
	require.Equal(t, http.StatusOK, rec.Code)

	var cart struct {
		ItemCount int `json:"itemCount"`
	}
	decodeData(t, env, &cart)
	assert.Equal(t, 2, cart.ItemCount)

	// The old anonymous identity is left with nothing.
	rec, env = call(t, h, http.MethodGet, "/api/cart", nil, anon)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	assert.Zero(t, cart.ItemCount)
}

func TestLoginFailureBodiesMatch(t *testing.T) {
	h := newAPI(t)

	rec, _ := call(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"email":     "jane@example.com",
		"password":  "secret1",
		"firstName": "Jane",
		"lastName":  "Doe",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	unknown, _ := call(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "nobody@example.com",
		"password": "secret1",
	}, nil)
	wrong, _ := call(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "wrong-password",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String(),
		"failed logins must be indistinguishable")
}

func TestRegisterConflict(t *testing.T) {
	h := newAPI(t)
	in := map[string]any{
		"email":     "jane@example.com",
		"password":  "secret1",
		"firstName": "Jane",
		"lastName":  "Doe",
	}

	rec, _ := call(t, h, http.MethodPost, "/api/auth/register", in, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := call(t, h, http.MethodPost, "/api/auth/register", in, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, env.Message)
}

func TestMeRequiresAuth(t *testing.T) {
	h := newAPI(t)

	rec, _ := call(t, h, http.MethodGet, "/api/auth/me", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = call(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"email":     "jane@example.com",
		"password":  "secret1",
		"firstName": "Jane",
		"lastName":  "Doe",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := call(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)

	rec, env = call(t, h, http.MethodGet, "/api/auth/me", nil,
		map[string]string{"Authorization": "Bearer " + login.Token})
	require.Equal(t, http.StatusOK, rec.Code)

	var me struct {
		Email string `json:"email"`
	}
	decodeData(t, env, &me)
	assert.Equal(t, "jane@example.com", me.Email)
}

func TestCheckoutFlow(t *testing.T) {
	h := newAPI(t)
	anon := map[string]string{identity.HeaderSessionID: "buyer-1"}

	rec, _ := call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 5, "quantity": 2}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := call(t, h, http.MethodPost, "/api/orders", map[string]any{
		"email":           "buyer@example.com",
		"shippingAddress": "1 Candle Lane",
	}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result struct {
		Order struct {
			ID       uint   `json:"ID"`
			Subtotal string `json:"subtotal"`
			Shipping string `json:"shipping"`
			Total    string `json:"total"`
		} `json:"order"`
		TrackingToken string `json:"trackingToken"`
	}
	decodeData(t, env, &result)
	assert.Equal(t, "44.00", result.Order.Subtotal)
	assert.Equal(t, "5.99", result.Order.Shipping)
	assert.Equal(t, "49.99", result.Order.Total)
	require.NotEmpty(t, result.TrackingToken)

	// The cart was consumed by the checkout.
	var cart struct {
		ItemCount int `json:"itemCount"`
	}
	rec, env = call(t, h, http.MethodGet, "/api/cart", nil, anon)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, env, &cart)
	assert.Zero(t, cart.ItemCount)

	// Anyone holding the token can look the order up.
	rec, env = call(t, h, http.MethodGet, "/api/orders/track/"+result.TrackingToken, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracked struct {
		Status string `json:"status"`
		Total  string `json:"total"`
	}
	decodeData(t, env, &tracked)
	assert.Equal(t, "created", tracked.Status)
	assert.Equal(t, "49.99", tracked.Total)
	assert.NotContains(t, rec.Body.String(), "buyer@example.com",
		"tracking view must not leak the customer's email")

	// Checkout with an empty cart is rejected.
	rec, _ = call(t, h, http.MethodPost, "/api/orders", map[string]any{
		"email":           "buyer@example.com",
		"shippingAddress": "1 Candle Lane",
	}, anon)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Older clients post the header nested under "order" with an "items"
// array. The nested header is accepted; the items are ignored and pricing
// always comes from the server-side cart.
func TestCheckoutAcceptsNestedOrderHeader(t *testing.T) {
	h := newAPI(t)
	anon := map[string]string{identity.HeaderSessionID: "buyer-legacy"}

	rec, _ := call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 1, "quantity": 1}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := call(t, h, http.MethodPost, "/api/orders", map[string]any{
		"order": map[string]any{
			"email":           "buyer@example.com",
			"shippingAddress": "1 Candle Lane",
		},
		"items": []map[string]any{
			{"productId": 1, "quantity": 99, "price": "0.01"},
		},
	}, anon)
	require.Equal(t, http.StatusCreated, rec.Code)

	var result struct {
		Order struct {
			Subtotal string `json:"subtotal"`
			Total    string `json:"total"`
		} `json:"order"`
	}
	decodeData(t, env, &result)
	assert.Equal(t, "28.00", result.Order.Subtotal, "client items must not influence pricing")
	assert.Equal(t, "33.99", result.Order.Total)
}

func TestOrderHistoryRequiresAuth(t *testing.T) {
	h := newAPI(t)

	rec, _ := call(t, h, http.MethodGet, "/api/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := call(t, h, http.MethodPost, "/api/auth/register", map[string]any{
		"email":     "jane@example.com",
		"password":  "secret1",
		"firstName": "Jane",
		"lastName":  "Doe",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = call(t, h, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "jane@example.com",
		"password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var login struct {
		Token string `json:"token"`
	}
	decodeData(t, env, &login)
	bearer := map[string]string{"Authorization": "Bearer " + login.Token}

	_, _ = call(t, h, http.MethodPost, "/api/cart",
		map[string]any{"productId": 1, "quantity": 1}, bearer)
	rec, _ = call(t, h, http.MethodPost, "/api/orders", map[string]any{
		"email":           "jane@example.com",
		"shippingAddress": "1 Candle Lane",
	}, bearer)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = call(t, h, http.MethodGet, "/api/orders", nil, bearer)
	require.Equal(t, http.StatusOK, rec.Code)

	var history []struct {
		Items []struct {
			Price string `json:"price"`
		} `json:"orderItems"`
	}
	decodeData(t, env, &history)
	require.Len(t, history, 1)
	require.Len(t, history[0].Items, 1)
	assert.Equal(t, "28.00", history[0].Items[0].Price)
}

func TestGraphQLCatalogQuery(t *testing.T) {
	h := newAPI(t)

	rec, _ := call(t, h, http.MethodPost, "/api/graphql", map[string]any{
		"query": `{ products(featured: true) { id name price } }`,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Data struct {
			Products []struct {
				ID    int    `json:"id"`
				Name  string `json:"name"`
				Price string `json:"price"`
			} `json:"products"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Len(t, result.Data.Products, 3)

	rec, _ = call(t, h, http.MethodPost, "/api/graphql", map[string]any{
		"query": `{ product(id: 1) { name } }`,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lavender Dreams")
}

// TestScenarios drives the API through JSON scenario files, the way the
// wider platform's services are black-box tested.
func TestScenarios(t *testing.T) {
	h := newAPI(t)
	for _, scenario := range []string{
		"testdata/product_not_found.json",
		"testdata/register_missing_fields.json",
		"testdata/cart_add_unknown_product.json",
		"testdata/orders_unauthenticated.json",
		"testdata/track_invalid_token.json",
	} {
		testkit.Run(t, h, scenario)
	}
}
