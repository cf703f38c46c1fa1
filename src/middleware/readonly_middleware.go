package middleware

import (
	"log"
	"net/http"
)

// ReadOnly rejects every write with 403 while enabled, except the unauthenticated auth entry points.
func ReadOnly(enabled bool) func(http.Handler) http.Handler {
	allowedPosts := map[string]bool{
		"/auth/login":           true,
		"/auth/register":        true,
		"/auth/forgot-password": true,
		"/auth/reset-password":  true,
	}

	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodPost && allowedPosts[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			log.Printf("WARN: Read-only mode rejected %s %s", r.Method, r.URL.Path)
			writeError(w, http.StatusForbidden, "read-only mode: writes are disabled")
		})
	}
}
