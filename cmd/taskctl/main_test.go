package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "message": "ok", "data": data})
}

// fakeGateway accepts one account and records the last task update body.
func fakeGateway(t *testing.T, lastUpdate *map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"Invalid credentials","data":null,"error":{"code":"INVALID_CREDENTIALS","details":null}}`))
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"access_token": "tok-1", "token_type": "bearer", "expires_in": 900})
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 1, "email": "a@example.com", "is_active": true})
	})
	mux.HandleFunc("GET /tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, []map[string]any{
			{"id": 2, "title": "write docs", "status": "pending", "created_at": "2026-01-02T03:04:05Z"},
		})
	})
	mux.HandleFunc("PUT /tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		*lastUpdate = body
		writeEnvelope(w, http.StatusOK, map[string]any{"id": 2, "title": "write docs", "status": "completed", "created_at": "2026-01-02T03:04:05Z"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testCLI(t *testing.T) (cli, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskctl", "config.json")
	out := &bytes.Buffer{}
	return cli{
		out:        out,
		configPath: func() (string, error) { return path, nil },
		readSecret: func() (string, error) { return "secret", nil },
	}, out
}

func TestLoginStoresTokenAndListsTasks(t *testing.T) {
	var update map[string]any
	gw := fakeGateway(t, &update)
	app, out := testCLI(t)

	require.NoError(t, app.run("login", []string{"--email", "a@example.com", "--api", gw.URL}))
	require.Contains(t, out.String(), "login successful")

	cfg, err := app.loadConfig()
	require.NoError(t, err)
	require.Equal(t, "tok-1", cfg.AccessToken)
	require.Equal(t, gw.URL, cfg.APIBaseURL)
	require.False(t, cfg.ExpiresAt.IsZero())

	out.Reset()
	require.NoError(t, app.run("task", []string{"list"}))
	require.Contains(t, out.String(), "2\tpending\twrite docs")

	out.Reset()
	require.NoError(t, app.run("whoami", nil))
	require.Contains(t, out.String(), "a@example.com")
}

func TestLoginRejected(t *testing.T) {
	var update map[string]any
	gw := fakeGateway(t, &update)
	app, _ := testCLI(t)

	err := app.run("login", []string{"--email", "a@example.com", "--password", "wrong", "--api", gw.URL})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Invalid credentials")

	cfg, err := app.loadConfig()
	require.NoError(t, err)
	require.Empty(t, cfg.AccessToken)
}

func TestTaskUpdateSendsOnlyGivenFlags(t *testing.T) {
	var update map[string]any
	gw := fakeGateway(t, &update)
	app, _ := testCLI(t)
	require.NoError(t, app.run("login", []string{"--email", "a@example.com", "--api", gw.URL}))

	require.NoError(t, app.run("task", []string{"update", "--id", "2", "--status", "completed"}))
	require.Equal(t, map[string]any{"status": "completed"}, update)

	err := app.run("task", []string{"update", "--id", "2"})
	require.ErrorContains(t, err, "nothing to update")
}

func TestCommandsRequireLogin(t *testing.T) {
	app, _ := testCLI(t)

	require.ErrorIs(t, app.run("task", []string{"list"}), errNotLoggedIn)
	require.ErrorIs(t, app.run("profile", []string{"show"}), errNotLoggedIn)
	require.ErrorIs(t, app.run("whoami", nil), errNotLoggedIn)
}

func TestTaskIDValidation(t *testing.T) {
	app, _ := testCLI(t)

	require.ErrorContains(t, app.run("task", []string{"show"}), "--id is required")
	require.ErrorContains(t, app.run("task", []string{"delete", "--id", "abc"}), "invalid task id")
}

func TestUnknownCommand(t *testing.T) {
	app, out := testCLI(t)

	require.Error(t, app.run("deploy", nil))
	require.True(t, strings.Contains(out.String(), "Usage:"))
}
