package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
)

// Recover turns a handler panic into a 500 envelope.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.Error("panic recovered",
					"panic", rec,
					"method", req.Method,
					"path", req.URL.Path,
					"stack", string(debug.Stack()),
				)
				respond.Failure(w, http.StatusInternalServerError, apperr.KindInternal, "Internal server error", "")
			}()
			next.ServeHTTP(w, req)
		})
	}
}
