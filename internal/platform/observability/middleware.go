package observability

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger attaches a request-scoped logger to the context and logs completion
// with status, latency and size.
func RequestLogger(base *zap.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			logger := base.With(
				zap.String("request_id", middleware.GetReqID(ctx)),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
			)
			if r.RemoteAddr != "" {
				logger = logger.With(zap.String("remote_ip", r.RemoteAddr))
			}
			r = r.WithContext(WithLogger(ctx, logger))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			var panicked bool
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				if panicked && status < http.StatusInternalServerError {
					status = http.StatusInternalServerError
				}
				fields := []zap.Field{
					zap.Int("status", status),
					zap.Duration("latency", time.Since(start)),
					zap.Int("bytes", ww.BytesWritten()),
					zap.String("route", routePattern(r)),
				}
				switch {
				case panicked || status >= http.StatusInternalServerError:
					logger.Error("request completed", fields...)
				case status >= http.StatusBadRequest:
					logger.Warn("request completed", fields...)
				default:
					logger.Info("request completed", fields...)
				}
			}()

			defer func() {
				if rec := recover(); rec != nil {
					panicked = true
					panic(rec)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func routePattern(r *http.Request) string {
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
