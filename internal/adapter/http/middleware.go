package http

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/madu12/metro-interstate-traffic-volume/internal/observability"
)

type loggerMiddleware struct {
	log *slog.Logger
}

func newLoggerMiddleware(log *slog.Logger) *loggerMiddleware {
	return &loggerMiddleware{log: log}
}

// handler stores a request-scoped logger in the request context. It runs
// after chi's RequestID middleware so the id is available.
func (m *loggerMiddleware) handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enriched := m.log.With(
			"request_id", chimiddleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := observability.ToContext(r.Context(), enriched)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
