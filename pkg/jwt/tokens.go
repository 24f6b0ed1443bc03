package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

const defaultIssuer = "taskmesh-auth"

var (
	// ErrMissingSecret is returned when a codec is built without a signing secret.
	ErrMissingSecret = errors.New("jwt: signing secret is required")
	// ErrInvalidTTL is returned when a token is requested with a non-positive lifetime.
	ErrInvalidTTL = errors.New("jwt: ttl must be positive")
	// ErrInvalidSignature means the token was not signed with our secret and algorithm.
	ErrInvalidSignature = errors.New("jwt: invalid signature")
	// ErrExpired means the embedded expiry instant has passed.
	ErrExpired = errors.New("jwt: token expired")
	// ErrMalformed covers structurally broken tokens and rejected claims.
	ErrMalformed = errors.New("jwt: malformed token")
)

// tokenClaims is the wire payload; sub carries the decimal user id.
type tokenClaims struct {
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	jwtlib.RegisteredClaims
}

// Codec issues and verifies HS256 access tokens.
type Codec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// CodecOption customises a Codec.
type CodecOption func(*Codec)

// WithIssuer overrides the iss claim written and required by the codec.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) {
		if strings.TrimSpace(issuer) != "" {
			c.issuer = strings.TrimSpace(issuer)
		}
	}
}

// WithClock replaces the time source used for iat/exp and expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCodec builds a Codec bound to secret.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}
	c := &Codec{secret: []byte(secret), issuer: defaultIssuer, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs claims with an absolute expiry of now+ttl.
func (c *Codec) Issue(claims identity.Claims, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	now := c.now()
	payload := tokenClaims{
		Email:     claims.Email,
		IsActive:  claims.IsActive,
		CreatedAt: claims.CreatedAt,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   strconv.FormatInt(claims.Subject, 10),
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expiryInstant(now, ttl)),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, payload)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// expiryInstant rounds now+ttl up to the whole second exp is encoded with, so
// a token never expires before its full lifetime has passed.
func expiryInstant(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl)
	if truncated := exp.Truncate(jwtlib.TimePrecision); truncated.Before(exp) {
		exp = truncated.Add(jwtlib.TimePrecision)
	}
	return exp
}

// Verify checks signature and expiry and returns the embedded claims.
func (c *Codec) Verify(token string) (identity.Claims, error) {
	var payload tokenClaims
	parsed, err := jwtlib.ParseWithClaims(token, &payload, func(t *jwtlib.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Name}),
		jwtlib.WithTimeFunc(c.now),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithIssuer(c.issuer),
	)
	if err != nil {
		return identity.Claims{}, classify(err)
	}
	if !parsed.Valid {
		return identity.Claims{}, ErrMalformed
	}
	subject, err := strconv.ParseInt(payload.Subject, 10, 64)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("%w: subject %q", ErrMalformed, payload.Subject)
	}
	return identity.Claims{
		Subject:   subject,
		Email:     payload.Email,
		IsActive:  payload.IsActive,
		CreatedAt: payload.CreatedAt,
		ExpiresAt: payload.ExpiresAt.Time,
	}, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
