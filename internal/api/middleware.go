// Package api implements the Marque REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const ownerKey ctxKey = iota

// OwnerMiddleware resolves the caller's ownership from the Authorization
// header and stores it in the request context.
//
// With auth disabled every caller is the owner (local single-user setup).
// With token auth, a valid "Authorization: Bearer <token>" header grants
// owner rights; anything else degrades to anonymous public read access
// rather than being rejected outright, since the public side of the
// collection is meant to be shared.
func OwnerMiddleware(authEnabled bool, token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			owner := true
			if authEnabled {
				auth := r.Header.Get("Authorization")
				owner = strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == token
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ownerKey, owner)))
		})
	}
}

// isOwner reports whether the request carries owner rights.
func isOwner(r *http.Request) bool {
	owner, _ := r.Context().Value(ownerKey).(bool)
	return owner
}
