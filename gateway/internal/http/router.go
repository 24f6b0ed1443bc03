package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/gateway/internal/proxy"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/server"
)

// Upstreams are the services behind the gateway.
type Upstreams struct {
	Auth *proxy.Upstream
	Task *proxy.Upstream
	User *proxy.Upstream
}

var resourceMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete}

// NewRouter maps public paths onto upstreams. Paths and methods outside the
// table get envelope 404/405 responses from the gateway itself.
func NewRouter(logger *slog.Logger, appName string, up Upstreams) chi.Router {
	r := server.NewRouter(server.Options{
		Service: "gateway",
		AppName: appName,
		Logger:  logger,
		Checks: map[string]server.HealthCheck{
			up.Auth.Name(): up.Auth.Ping,
			up.Task.Name(): up.Task.Ping,
			up.User.Name(): up.User.Ping,
		},
	})

	r.Post("/auth/*", up.Auth.ServeHTTP)
	r.Get("/auth/me", up.Auth.ServeHTTP)

	for _, method := range resourceMethods {
		r.Method(method, "/tasks", up.Task)
		r.Method(method, "/tasks/*", up.Task)
		r.Method(method, "/users/*", up.User)
	}
	return r
}
