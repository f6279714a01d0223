package middleware

import (
	"net/http"

	"workmarket/internal/httputil"
)

// Identity lifts the caller's id from the X-User-ID header into the
// request context. Authentication itself happens upstream (gateway or
// reverse proxy); this service only consumes the asserted identity.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			r = httputil.WithUserID(r, userID)
		}
		next.ServeHTTP(w, r)
	})
}
