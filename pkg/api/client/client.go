package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

const defaultTimeout = 5 * time.Second

// ErrUnavailable marks failures to reach the service at all (dial errors,
// timeouts, truncated responses) as opposed to an answered request.
var ErrUnavailable = errors.New("service unavailable")

// Client provides typed access to the auth, task and profile contracts,
// either directly or through the gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout bounds every request made by the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New constructs a Client pointing at the provided base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents an error envelope returned by a service.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	if e.Code == "" {
		return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("request failed (%d %s): %s", e.Status, e.Code, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string  `json:"code"`
		Details *string `json:"details"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	endpoint := c.baseURL + path
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if v == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	apiErr := APIError{Status: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(env.Message)
	if env.Error != nil {
		apiErr.Code = env.Error.Code
	}
	return apiErr
}

// StatusOf returns the HTTP status carried by err, or 0 when the service
// never answered.
func StatusOf(err error) int {
	var apiErr APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// User reflects public user payloads.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", credentials{Email: email, Password: password}, "", &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// LoginResponse captures the token payload emitted by the auth service.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, "", &resp); err != nil {
		return LoginResponse{}, err
	}
	return resp, nil
}

// ValidateToken asks the auth service to verify token and returns its claims.
// ExpiresAt is zero when the service omits it.
func (c *Client) ValidateToken(ctx context.Context, token string) (identity.Claims, error) {
	var claims identity.Claims
	body := map[string]string{"token": token}
	if err := c.do(ctx, http.MethodPost, "/auth/validate-token", body, "", &claims); err != nil {
		return identity.Claims{}, err
	}
	return claims, nil
}

// Me returns the account behind token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, token, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// Task mirrors task payloads.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// CreateTaskInput captures the payload for task creation.
type CreateTaskInput struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

// UpdateTaskInput carries a partial update; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ListTasks returns the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, token string) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, token, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, token string, id int64) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, token, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// CreateTask creates a task owned by the caller.
func (c *Client) CreateTask(ctx context.Context, token string, input CreateTaskInput) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, token, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, token string, id int64, input UpdateTaskInput) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), input, token, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, token, nil)
}

// Profile mirrors user-profile payloads.
type Profile struct {
	ID         int64     `json:"id"`
	AuthUserID int64     `json:"auth_user_id"`
	FullName   string    `json:"full_name"`
	CreatedAt  time.Time `json:"created_at"`
}

type profileInput struct {
	FullName string `json:"full_name"`
}

// GetProfile returns the caller's profile.
func (c *Client) GetProfile(ctx context.Context, token string) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, token, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// CreateProfile creates the caller's profile.
func (c *Client) CreateProfile(ctx context.Context, token, fullName string) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPost, "/users/me", profileInput{FullName: fullName}, token, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// UpdateProfile renames the caller's profile.
func (c *Client) UpdateProfile(ctx context.Context, token, fullName string) (Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodPut, "/users/me", profileInput{FullName: fullName}, token, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// DeleteProfile removes the caller's profile.
func (c *Client) DeleteProfile(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/users/me", nil, token, nil)
}
