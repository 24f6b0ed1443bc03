package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

// Logging emits one structured line per request. The level follows the
// response status: error for 5xx, warn for 4xx, info otherwise.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			recorder := wrap(w)
			start := time.Now()
			next.ServeHTTP(recorder, req)

			status := recorder.statusCode()
			ctx := recorder.context(req.Context())
			fields := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"bytes", recorder.bytes,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if reqID := RequestIDFromContext(req.Context()); reqID != "" {
				fields = append(fields, "request_id", reqID)
			}
			if claims, ok := identity.FromContext(ctx); ok {
				fields = append(fields, "user_id", strconv.FormatInt(claims.Subject, 10))
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			logger.Log(req.Context(), level, "http_request", fields...)
		})
	}
}
