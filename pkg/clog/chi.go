package clog

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

type chiConfig struct {
	filter func(r *http.Request) bool
}

type ChiOption func(*chiConfig)

// WithChiFilter limits the access log to requests for which filter returns
// true. Attributes are still collected for every request.
func WithChiFilter(filter func(r *http.Request) bool) ChiOption {
	return func(cfg *chiConfig) {
		cfg.filter = filter
	}
}

// SlogChiMiddleware opens an attribute bag for each request and logs one
// access line when the handler returns.
func SlogChiMiddleware(opts ...ChiOption) func(http.Handler) http.Handler {
	cfg := chiConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			ctx := ContextWithSlog(r.Context())
			AddAttributes(ctx, map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
				"proto":  r.Proto,
			})
			next.ServeHTTP(ww, r.WithContext(ctx))
			if cfg.filter != nil && !cfg.filter(r) {
				return
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			AddAttributes(ctx, map[string]any{
				"status":        status,
				"bytes_written": ww.BytesWritten(),
				"duration":      time.Since(start),
			})
			slog.Log(ctx, StatusToLevel(status), http.StatusText(status))
		})
	}
}
