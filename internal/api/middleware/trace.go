package middleware

import (
	"log/slog"
	"net/http"

	"github.com/cheerforge/cheerforge/internal/api/shared"
	"github.com/cheerforge/cheerforge/internal/platform/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// NewTraceMiddleware returns middleware that assigns each request a trace ID,
// echoes it in the X-Trace-ID response header, and stores a request logger
// carrying the trace ID in the context.
func NewTraceMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			reqLogger := base.With(slog.String("trace_id", traceID))
			if reqID := middleware.GetReqID(ctx); reqID != "" {
				reqLogger = reqLogger.With(slog.String("request_id", reqID))
			}
			ctx = logger.WithLogger(ctx, reqLogger)

			reqLogger.Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			w.Header().Set(shared.TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
