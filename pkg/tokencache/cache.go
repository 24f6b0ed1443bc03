// Package tokencache memoises token validation results so resource services
// can skip the round-trip to the auth service. Every backend is best effort:
// failures read as misses and writes that fail are only logged.
package tokencache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

// Cache stores validated claims keyed by bearer token.
type Cache interface {
	// Get returns cached claims, or false on absence, expiry or backend failure.
	Get(ctx context.Context, token string) (identity.Claims, bool)
	// Put stores claims for at most ttl, clamped to the claims' own expiry.
	Put(ctx context.Context, token string, claims identity.Claims, ttl time.Duration)
	Close() error
}

const (
	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

// hashKey keeps raw bearer tokens out of the backend's keyspace.
func hashKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// effectiveTTL never lets an entry outlive the token it was derived from.
func effectiveTTL(claims identity.Claims, ttl time.Duration, now time.Time) time.Duration {
	if claims.ExpiresAt.IsZero() {
		return ttl
	}
	if remaining := claims.Remaining(now); remaining < ttl {
		return remaining
	}
	return ttl
}

type disabledCache struct{}

// Disabled returns a cache that never stores anything.
func Disabled() Cache {
	return disabledCache{}
}

func (disabledCache) Get(context.Context, string) (identity.Claims, bool) {
	recordLookup("disabled", resultMiss)
	return identity.Claims{}, false
}

func (disabledCache) Put(context.Context, string, identity.Claims, time.Duration) {}

func (disabledCache) Close() error { return nil }

var (
	metricsOnce sync.Once
	lookups     *prometheus.CounterVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		lookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskmesh",
			Subsystem: "tokencache",
			Name:      "lookups_total",
			Help:      "Validation cache lookups by backend and result",
		}, []string{"backend", "result"})
		if err := prometheus.Register(lookups); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
					lookups = existing
				}
			}
		}
	})
}

func recordLookup(backend, result string) {
	initMetrics()
	lookups.With(prometheus.Labels{"backend": backend, "result": result}).Inc()
}

// Open selects a backend by name: "redis" (falls back to memory when no
// address is configured), "memory", or "disabled".
func Open(backend string, opts RedisOptions, logger *slog.Logger) Cache {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "disabled", "none", "off":
		return Disabled()
	case "memory":
		return NewMemory()
	default:
		if strings.TrimSpace(opts.Addr) == "" {
			return NewMemory()
		}
		return NewRedis(opts, logger)
	}
}
