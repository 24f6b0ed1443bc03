// Package server assembles the HTTP plumbing every service shares: the
// middleware stack, welcome/health/metrics routes, envelope 404/405 handlers,
// request decoding and graceful shutdown.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/middleware"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
)

const (
	healthCheckTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// HealthCheck probes one dependency.
type HealthCheck func(context.Context) error

// Options configures NewRouter.
type Options struct {
	// Service names the metrics subsystem and the welcome message.
	Service string
	// AppName is shown on the welcome route.
	AppName string
	Logger  *slog.Logger
	// Checks are probed by /healthz; any failure reports 503.
	Checks map[string]HealthCheck
}

// NewRouter returns a chi router carrying the shared middleware and routes.
// Callers mount their own routes on the result.
func NewRouter(opts Options) chi.Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	instrumenter := middleware.NewInstrumenter(opts.Service)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Recover(log))
	r.Use(instrumenter.Middleware)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		respond.Failure(w, http.StatusNotFound, apperr.KindNotFound, "Not found", "")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		respond.Failure(w, http.StatusMethodNotAllowed, apperr.KindMethodNotAllowed, "Method not allowed", "")
	})

	welcome := opts.AppName
	if welcome == "" {
		welcome = opts.Service
	}
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		respond.Success(w, http.StatusOK, "Welcome to "+welcome, nil)
	})
	r.Get("/healthz", healthHandler(opts.Checks))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		components := make(map[string]any, len(checks))
		status := "ok"
		for name, check := range checks {
			ctx, cancel := context.WithTimeout(req.Context(), healthCheckTimeout)
			err := check(ctx)
			cancel()
			if err != nil {
				status = "degraded"
				components[name] = map[string]any{"status": "down", "error": err.Error()}
				continue
			}
			components[name] = map[string]any{"status": "up"}
		}
		payload := map[string]any{
			"status":     status,
			"components": components,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		}
		if status != "ok" {
			respond.JSON(w, http.StatusServiceUnavailable, respond.Envelope{
				Success: false,
				Message: "Service degraded",
				Data:    payload,
				Error:   &respond.ErrorBody{Code: string(apperr.KindUpstreamUnavailable)},
			})
			return
		}
		respond.Success(w, http.StatusOK, "Service healthy", payload)
	}
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, addr string, handler http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errorCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", addr)
		errorCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			return err
		}
		log.Info("server stopped")
		return nil
	case err := <-errorCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
