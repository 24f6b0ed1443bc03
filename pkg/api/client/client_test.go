package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func envelopeJSON(w http.ResponseWriter, status int, success bool, message string, data any, code string) {
	body := map[string]any{"success": success, "message": message, "data": data, "error": nil}
	if code != "" {
		body["error"] = map[string]any{"code": code, "details": nil}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewNormalisesBaseURL(t *testing.T) {
	cli, err := New("localhost:8000/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if cli.baseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", cli.baseURL)
	}
	if cli.httpClient.Timeout != defaultTimeout {
		t.Fatalf("expected default timeout, got %v", cli.httpClient.Timeout)
	}
}

func TestLoginDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body credentials
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != "alice@example.com" || body.Password != "pw123" {
			envelopeJSON(w, http.StatusUnauthorized, false, "Invalid credentials", nil, "INVALID_CREDENTIALS")
			return
		}
		envelopeJSON(w, http.StatusOK, true, "User logged-in successfully.", LoginResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 900}, "")
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	resp, err := cli.Login(context.Background(), "alice@example.com", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "tok" || resp.TokenType != "bearer" || resp.ExpiresIn != 900 {
		t.Fatalf("unexpected login response %+v", resp)
	}

	_, err = cli.Login(context.Background(), "alice@example.com", "wrong")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "INVALID_CREDENTIALS" || apiErr.Message != "Invalid credentials" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("StatusOf mismatch")
	}
}

func TestValidateTokenDecodesClaims(t *testing.T) {
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelopeJSON(w, http.StatusOK, true, "User validated successfully.", map[string]any{
			"subject":    1,
			"email":      "alice@example.com",
			"is_active":  true,
			"created_at": created.Format(time.RFC3339),
		}, "")
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	claims, err := cli.ValidateToken(context.Background(), "tok")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != 1 || !claims.IsActive || !claims.CreatedAt.Equal(created) {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.IsZero() {
		t.Fatalf("expected zero expiry when omitted, got %v", claims.ExpiresAt)
	}
}

func TestBearerTokenIsSent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			envelopeJSON(w, http.StatusUnauthorized, false, "Not authenticated", nil, "MISSING_CREDENTIAL")
			return
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/tasks":
			envelopeJSON(w, http.StatusOK, true, "Tasks fetched successfully", []Task{{ID: 1, Title: "a", Status: "pending"}}, "")
		case r.Method == http.MethodDelete && r.URL.Path == "/tasks/1":
			envelopeJSON(w, http.StatusOK, true, "Task deleted successfully", nil, "")
		default:
			envelopeJSON(w, http.StatusNotFound, false, "Not found", nil, "NOT_FOUND")
		}
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	tasks, err := cli.ListTasks(context.Background(), "tok")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "a" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
	if err := cli.DeleteTask(context.Background(), "tok", 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := cli.GetTask(context.Background(), "tok", 99); StatusOf(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if _, err := cli.ListTasks(context.Background(), ""); StatusOf(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %v", err)
	}
}

func TestNonEnvelopeErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	cli, _ := New(srv.URL)
	_, err := cli.Me(context.Background(), "tok")
	var apiErr APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadGateway || apiErr.Message != "bad gateway" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestUnreachableServerIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	cli, _ := New(url, WithTimeout(time.Second))
	_, err := cli.GetProfile(context.Background(), "tok")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if StatusOf(err) != 0 {
		t.Fatalf("expected no status for transport failure")
	}
}
