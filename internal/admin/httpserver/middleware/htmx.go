package middleware

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const htmxContextKey contextKey = "htmx.info"

// HTMXInfo captures request metadata from HX-* headers.
type HTMXInfo struct {
	IsHTMX     bool
	IsBoosted  bool
	CurrentURL string
	Target     string
	TriggerID  string
}

// HTMX returns middleware that inspects HX-* headers and annotates the context.
func HTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := HTMXInfo{
				IsHTMX:     strings.EqualFold(r.Header.Get("HX-Request"), "true"),
				IsBoosted:  strings.EqualFold(r.Header.Get("HX-Boosted"), "true"),
				CurrentURL: r.Header.Get("HX-Current-URL"),
				Target:     r.Header.Get("HX-Target"),
				TriggerID:  r.Header.Get("HX-Trigger"),
			}
			if info.IsHTMX {
				w.Header().Add("Vary", "HX-Request")
			}

			ctx := context.WithValue(r.Context(), htmxContextKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// HTMXInfoFromContext retrieves HTMX metadata; returns zero value if absent.
func HTMXInfoFromContext(ctx context.Context) HTMXInfo {
	val, ok := ctx.Value(htmxContextKey).(HTMXInfo)
	if !ok {
		return HTMXInfo{}
	}
	return val
}

// IsHTMXRequest returns true when the current request was initiated by htmx.
func IsHTMXRequest(ctx context.Context) bool {
	return HTMXInfoFromContext(ctx).IsHTMX
}

// RequireHTMX returns 404 for fragment routes reached by direct navigation.
func RequireHTMX() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsHTMXRequest(r.Context()) {
				http.NotFound(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// TriggerClientEvent asks htmx to dispatch event on the client after the swap.
func TriggerClientEvent(w http.ResponseWriter, event string) {
	if event = strings.TrimSpace(event); event != "" {
		w.Header().Set("HX-Trigger", event)
	}
}
