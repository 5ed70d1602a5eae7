package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKeyType int

const requestInfoKey requestInfoKeyType = iota

const defaultEnvironment = "Development"

// RequestInfo holds lightweight request metadata exposed to templates.
type RequestInfo struct {
	Path        string
	BasePath    string
	Method      string
	Environment string
}

// RequestInfoMiddleware annotates the context with the current path, the
// console base path and the deployment label shown in the page header. A blank
// environment reads as "Development".
func RequestInfoMiddleware(basePath, environment string) func(http.Handler) http.Handler {
	base := normaliseBase(basePath)
	env := strings.TrimSpace(environment)
	if env == "" {
		env = defaultEnvironment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := &RequestInfo{
				Path:        r.URL.Path,
				Method:      r.Method,
				BasePath:    base,
				Environment: env,
			}
			ctx := context.WithValue(r.Context(), requestInfoKey, info)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestInfoFromContext returns the request metadata stored by RequestInfoMiddleware.
func RequestInfoFromContext(ctx context.Context) (*RequestInfo, bool) {
	if ctx == nil {
		return nil, false
	}
	info, ok := ctx.Value(requestInfoKey).(*RequestInfo)
	return info, ok && info != nil
}

// BasePathFromContext returns the resolved base path or "/" when unavailable.
func BasePathFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.BasePath != "" {
		return info.BasePath
	}
	return "/"
}

// EnvironmentFromContext returns the deployment label, or "Development" outside
// RequestInfoMiddleware.
func EnvironmentFromContext(ctx context.Context) string {
	if info, ok := RequestInfoFromContext(ctx); ok && info.Environment != "" {
		return info.Environment
	}
	return defaultEnvironment
}

func normaliseBase(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return "/"
	}
	if !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	if base != "/" {
		base = strings.TrimRight(base, "/")
		if base == "" {
			return "/"
		}
	}
	return base
}
