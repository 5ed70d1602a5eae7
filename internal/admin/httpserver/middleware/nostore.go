package middleware

import "net/http"

// NoStore marks every response as uncacheable.
func NoStore() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cache-Control", "no-store, max-age=0")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
			next.ServeHTTP(w, r)
		})
	}
}
