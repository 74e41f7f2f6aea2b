// Package identity resolves who a request acts as: a logged-in user or an
// anonymous shopper. Every cart and order endpoint goes through it, so the
// precedence rules live in exactly one place.
package identity

import (
	"net/http"
	"strings"

	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/auth"
	"github.com/emberwick/storefront/pkg/session"
)

// HeaderSessionID lets API clients without cookie support carry their own
// anonymous cart identity.
const HeaderSessionID = "X-Session-ID"

const sessionUserKey = "user_id"

// Owner resolves the cart owner of a request. A logged-in user always wins
// over any anonymous identity the request also carries.
func Owner(r *http.Request) store.Owner {
	if id, ok := UserID(r); ok {
		return store.UserOwner(id)
	}
	return store.SessionOwner(AnonymousID(r))
}

// AnonymousID returns the request's anonymous cart identity: the
// X-Session-ID header when the client sends one, otherwise the cookie
// session id. Login handlers pass this to the cart migration.
func AnonymousID(r *http.Request) string {
	if sid := r.Header.Get(HeaderSessionID); sid != "" {
		return sid
	}
	return session.FromCtx(r).ID()
}

// UserID returns the authenticated user behind the request, preferring the
// cookie session over a bearer token.
func UserID(r *http.Request) (uint, bool) {
	if id, ok := session.FromCtx(r).GetInt(sessionUserKey); ok && id > 0 {
		return uint(id), true
	}

	header := r.Header.Get("Authorization")
	if token := strings.TrimPrefix(header, "Bearer "); token != header && token != "" {
		if claims, err := auth.ValidateToken(token); err == nil {
			return claims.UserID, true
		}
	}
	return 0, false
}

// Login records the user in the cookie session.
func Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	sess := session.FromCtx(r)
	sess.Set(sessionUserKey, int(userID))
	return sess.Save(w)
}

// Logout drops the session's user and everything else in it.
func Logout(w http.ResponseWriter, r *http.Request) error {
	sess := session.FromCtx(r)
	sess.Invalidate()
	return sess.Save(w)
}
