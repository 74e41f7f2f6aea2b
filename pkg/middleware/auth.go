package middleware

import (
	"context"
	"net/http"
)

// UserResolver extracts the authenticated user id from a request. The
// concrete resolver lives in the application layer so this package stays
// free of session and token details.
type UserResolver func(r *http.Request) (uint, bool)

type userIDKey struct{}

// RequireUser rejects unauthenticated requests with 401 and injects the
// resolved user id into the request context for handlers downstream.
func RequireUser(resolve UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := resolve(r)
			if !ok {
				http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromCtx returns the user id stored by RequireUser.
func UserIDFromCtx(ctx context.Context) (uint, bool) {
	id, ok := ctx.Value(userIDKey{}).(uint)
	return id, ok
}
