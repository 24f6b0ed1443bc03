package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
)

func TestRequestIDGeneratesWhenMissing(t *testing.T) {
	var seen, fromCtx string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
		fromCtx = RequestIDFromContext(r.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatalf("expected generated request id on the request")
	}
	if seen != fromCtx || seen != rec.Header().Get(RequestIDHeader) {
		t.Fatalf("request id mismatch: header=%q ctx=%q response=%q", seen, fromCtx, rec.Header().Get(RequestIDHeader))
	}
}

func TestRequestIDKeepsCallerValue(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected caller id to be echoed, got %q", got)
	}
}

func TestLoggingLevelFollowsStatusAndIncludesUser(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", slog.LevelDebug)
	h := RequestID(Logging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := identity.NewContext(r.Context(), identity.Claims{Subject: 42})
		if setter, ok := w.(ContextSetter); ok {
			setter.SetContext(ctx)
		}
		w.WriteHeader(http.StatusNotFound)
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/9", nil))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, buf.String())
	}
	if entry["level"] != "WARN" {
		t.Fatalf("expected WARN for 404, got %v", entry["level"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Fatalf("unexpected status field %v", entry["status"])
	}
	if entry["user_id"] != "42" {
		t.Fatalf("expected user_id 42, got %v", entry["user_id"])
	}
	if entry["request_id"] == nil || entry["service"] != "test" {
		t.Fatalf("expected request_id and service fields, got %v", entry)
	}
}

func TestRecoverWritesEnvelope(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", slog.LevelDebug)
	h := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"INTERNAL_ERROR"`) {
		t.Fatalf("expected INTERNAL_ERROR envelope, got %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("expected panic to be logged")
	}
}

func TestInstrumenterLabelsRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	in := newInstrumenter(reg, "test")

	r := chi.NewRouter()
	r.Use(in.Middleware)
	r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/17", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/18", nil))

	got := testutil.ToFloat64(in.requestTotal.With(prometheus.Labels{
		"method": http.MethodGet,
		"route":  "/tasks/{id}",
		"status": "418",
	}))
	if got != 2 {
		t.Fatalf("expected 2 observations for /tasks/{id}, got %v", got)
	}
}

func TestInstrumenterReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := newInstrumenter(reg, "dup")
	second := newInstrumenter(reg, "dup")
	if first.requestTotal != second.requestTotal {
		t.Fatalf("expected second instrumenter to reuse the registered counter")
	}
}
