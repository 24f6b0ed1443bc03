// Package identity holds the validated claim set that flows from the auth
// service to resource handlers.
package identity

import (
	"context"
	"time"
)

// Claims is the identity embedded in an access token.
type Claims struct {
	Subject   int64     `json:"subject"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// Remaining reports how long the claims stay valid relative to now.
// Claims without an expiry report zero.
func (c Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

// Expired reports whether the claims carry an expiry that has passed.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

type contextKey string

const claimsKey contextKey = "taskmesh-identity-claims"

// NewContext returns a copy of ctx carrying claims.
func NewContext(ctx context.Context, claims Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext extracts claims attached by the authorization guard.
func FromContext(ctx context.Context) (Claims, bool) {
	value := ctx.Value(claimsKey)
	if value == nil {
		return Claims{}, false
	}
	claims, ok := value.(Claims)
	return claims, ok
}
