package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var histogramBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}

// Instrumenter records request counts and latencies for one service.
type Instrumenter struct {
	requestTotal   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// NewInstrumenter registers the request collectors under the taskmesh
// namespace and the given subsystem, reusing collectors that are already
// registered.
func NewInstrumenter(subsystem string) *Instrumenter {
	return newInstrumenter(prometheus.DefaultRegisterer, subsystem)
}

func newInstrumenter(reg prometheus.Registerer, subsystem string) *Instrumenter {
	in := &Instrumenter{
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskmesh",
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "Count of processed HTTP requests",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "taskmesh",
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP handlers",
			Buckets:   histogramBuckets,
		}, []string{"method", "route", "status"}),
	}
	if err := reg.Register(in.requestTotal); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				in.requestTotal = existing
			}
		}
	}
	if err := reg.Register(in.requestLatency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				in.requestLatency = existing
			}
		}
	}
	return in
}

// Middleware observes every request. Routes are labelled with the chi
// pattern so that ids in paths do not explode label cardinality.
func (in *Instrumenter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		recorder := wrap(w)
		start := time.Now()
		next.ServeHTTP(recorder, req)

		route := "unmatched"
		if rctx := chi.RouteContext(req.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		labels := prometheus.Labels{
			"method": req.Method,
			"route":  route,
			"status": strconv.Itoa(recorder.statusCode()),
		}
		in.requestTotal.With(labels).Inc()
		in.requestLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}
