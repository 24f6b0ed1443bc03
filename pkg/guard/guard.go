// Package guard authorizes requests to resource services: it extracts the
// bearer token, consults the validation cache and falls back to the auth
// service.
package guard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/api/client"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/middleware"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/respond"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/tokencache"
)

const (
	defaultTimeout     = 5 * time.Second
	defaultFallbackTTL = time.Minute
)

var (
	// ErrMissingCredential means the request carried no usable bearer token.
	ErrMissingCredential   = apperr.New(apperr.KindMissingCredential, "Not authenticated")
	// ErrInvalidToken means the auth service rejected the token.
	ErrInvalidToken        = apperr.New(apperr.KindInvalidOrExpiredToken, "Invalid or expired token")
	// ErrUpstreamUnavailable means the auth service could not give an answer.
	ErrUpstreamUnavailable = apperr.New(apperr.KindUpstreamUnavailable, "Auth service unavailable")
)

// Validator is the origin of truth for tokens.
type Validator interface {
	ValidateToken(ctx context.Context, token string) (identity.Claims, error)
}

// Guard authorizes bearer tokens.
type Guard struct {
	cache       tokencache.Cache
	validator   Validator
	logger      *slog.Logger
	timeout     time.Duration
	fallbackTTL time.Duration
	now         func() time.Time
}

// Option customises a Guard.
type Option func(*Guard)

// WithTimeout bounds each call to the validator.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithFallbackTTL sets how long claims without an expiry stay cached.
func WithFallbackTTL(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.fallbackTTL = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		if now != nil {
			g.now = now
		}
	}
}

// New builds a Guard. A nil cache disables caching.
func New(cache tokencache.Cache, validator Validator, logger *slog.Logger, opts ...Option) *Guard {
	if cache == nil {
		cache = tokencache.Disabled()
	}
	if logger == nil {
		logger = slog.Default()
	}
	g := &Guard{
		cache:       cache,
		validator:   validator,
		logger:      logger,
		timeout:     defaultTimeout,
		fallbackTTL: defaultFallbackTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authenticate resolves the identity behind an Authorization header value.
func (g *Guard) Authenticate(ctx context.Context, header string) (identity.Claims, error) {
	token, err := BearerToken(header)
	if err != nil {
		return identity.Claims{}, ErrMissingCredential
	}

	if claims, ok := g.cache.Get(ctx, token); ok {
		return claims, nil
	}

	vctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	claims, err := g.validator.ValidateToken(vctx, token)
	if err != nil {
		return identity.Claims{}, g.classify(err)
	}

	ttl := g.fallbackTTL
	if !claims.ExpiresAt.IsZero() {
		ttl = claims.Remaining(g.now())
	}
	if ttl > 0 {
		g.cache.Put(ctx, token, claims, ttl)
	}
	return claims, nil
}

// classify maps origin failures: only an explicit rejection of the token
// (401, or 422 for an unusable token body) means the token is bad. Any other
// status, such as 404 from a misrouted URL or 429, means the origin could
// not answer.
func (g *Guard) classify(err error) error {
	status := client.StatusOf(err)
	if status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity {
		return ErrInvalidToken
	}
	g.logger.Warn("auth service unavailable", "error", err, "status", status)
	return apperr.Wrap(apperr.KindUpstreamUnavailable, ErrUpstreamUnavailable.Message, err)
}

// Middleware rejects unauthenticated requests and attaches claims to the
// request context of authenticated ones.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		claims, err := g.Authenticate(req.Context(), req.Header.Get("Authorization"))
		if err != nil {
			if apperr.KindOf(err) == apperr.KindMissingCredential {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			respond.Error(w, g.logger, err)
			return
		}
		ctx := identity.NewContext(req.Context(), claims)
		if setter, ok := w.(middleware.ContextSetter); ok {
			setter.SetContext(ctx)
		}
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("empty bearer token")
	}
	return token, nil
}
