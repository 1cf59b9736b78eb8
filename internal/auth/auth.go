// Package auth guards the computational API behind an optional shared
// bearer token.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// protectedPrefix is the part of the URL space that requires a token.
// Probes and /metrics stay public so orchestrators keep working.
const protectedPrefix = "/api/"

// Protected reports whether path requires a token when auth is enabled.
func Protected(path string) bool {
	return strings.HasPrefix(path, protectedPrefix)
}

// Middleware enforces "Authorization: Bearer <token>" on protected paths.
// An empty token disables the check.
func Middleware(token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Protected(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="eclipse"`)
				w.WriteHeader(http.StatusUnauthorized)
				jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
