package identity_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/auth"
	"github.com/emberwick/storefront/pkg/cache"
	"github.com/emberwick/storefront/pkg/session"
)

// withSession runs fn against a request that has passed through the session
// middleware, optionally carrying the cookie of a previous response.
func withSession(t *testing.T, req *http.Request, fn func(w http.ResponseWriter, r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler := session.Middleware(session.DefaultOptions())(http.HandlerFunc(fn))
	handler.ServeHTTP(rec, req)
	return rec
}

func TestOwnerPrefersHeaderOverCookieSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set(identity.HeaderSessionID, "client-carried")

	withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, store.SessionOwner("client-carried"), identity.Owner(r))
		assert.Equal(t, "client-carried", identity.AnonymousID(r))
	})
}

func TestOwnerFallsBackToCookieSession(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)

	withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		sid := session.FromCtx(r).ID()
		require.NotEmpty(t, sid)
		assert.Equal(t, store.SessionOwner(sid), identity.Owner(r))
	})
}

func TestOwnerFromBearerToken(t *testing.T) {
	token, err := auth.GenerateToken(42, "customer")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(identity.HeaderSessionID, "still-anonymous")

	withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		// The user always wins over any anonymous identity on the request.
		assert.Equal(t, store.UserOwner(42), identity.Owner(r))

		id, ok := identity.UserID(r)
		assert.True(t, ok)
		assert.Equal(t, uint(42), id)
	})
}

func TestGarbageBearerTokenIsAnonymous(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	req.Header.Set(identity.HeaderSessionID, "anon-1")

	withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		_, ok := identity.UserID(r)
		assert.False(t, ok)
		assert.Equal(t, store.SessionOwner("anon-1"), identity.Owner(r))
	})
}

func TestLoginPersistsUserInSession(t *testing.T) {
	cache.Flush()

	// First request: log in and capture the session cookie.
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, identity.Login(w, r, 7))
	})

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// Second request with the cookie resolves to the user.
	next := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	withSession(t, next, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, store.UserOwner(7), identity.Owner(r))
	})
}

func TestLogoutDropsUser(t *testing.T) {
	cache.Flush()

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	rec := withSession(t, req, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, identity.Login(w, r, 7))
	})

	out := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range rec.Result().Cookies() {
		out.AddCookie(c)
	}
	rec2 := withSession(t, out, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, identity.Logout(w, r))
	})

	after := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	for _, c := range rec2.Result().Cookies() {
		after.AddCookie(c)
	}
	withSession(t, after, func(w http.ResponseWriter, r *http.Request) {
		_, ok := identity.UserID(r)
		assert.False(t, ok)
	})
}
