package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/logger"
)

type captured struct {
	method string
	path   string
	query  string
	host   string
	body   string
	auth   string
	xff    string
}

func TestUpstreamForwardsRequestAndRelaysResponse(t *testing.T) {
	got := make(chan captured, 1)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			host:   r.Host,
			body:   string(body),
			auth:   r.Header.Get("Authorization"),
			xff:    r.Header.Get("X-Forwarded-For"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "task")
		w.WriteHeader(http.StatusTeapot)
		_, _ = io.WriteString(w, `{"success":false}`)
	}))
	defer backend.Close()

	up, err := New("task", backend.URL, time.Second, logger.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "http://gateway.local/tasks/5?verbose=1", strings.NewReader(`{"status":"completed"}`))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, req)

	c := <-got
	if c.method != http.MethodPut || c.path != "/tasks/5" || c.query != "verbose=1" {
		t.Fatalf("request not preserved: %+v", c)
	}
	if c.body != `{"status":"completed"}` || c.auth != "Bearer tok" {
		t.Fatalf("body or headers not forwarded: %+v", c)
	}
	if c.host == "gateway.local" || c.host != strings.TrimPrefix(backend.URL, "http://") {
		t.Fatalf("inbound host must be replaced, upstream saw %q", c.host)
	}
	if c.xff == "" {
		t.Fatalf("expected X-Forwarded-For to be set")
	}

	if rec.Code != http.StatusTeapot || rec.Body.String() != `{"success":false}` {
		t.Fatalf("response not relayed verbatim: %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "application/json" || rec.Header().Get("X-Upstream") != "task" {
		t.Fatalf("response headers not relayed: %v", rec.Header())
	}
}

func TestUpstreamDownIsServiceUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := backend.URL
	backend.Close()

	up, err := New("user", addr, time.Second, logger.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var env struct {
		Message string `json:"message"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "UPSTREAM_UNAVAILABLE" || env.Message != "User service unavailable" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if err := up.Ping(context.Background()); err == nil {
		t.Fatalf("expected ping to fail for a dead upstream")
	}
}

func TestUpstreamTimeoutIsServiceUnavailable(t *testing.T) {
	release := make(chan struct{})
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer backend.Close()
	defer close(release)

	up, err := New("auth", backend.URL, 50*time.Millisecond, logger.Discard())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := httptest.NewRecorder()
	up.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`)))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 on timeout, got %d", rec.Code)
	}
}

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("auth", "localhost", time.Second, nil); err == nil {
		t.Fatalf("expected error for url without scheme")
	}
}
