package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
)

const (
	defaultRedisPrefix  = "taskmesh:tokencache:"
	defaultRedisTimeout = 250 * time.Millisecond
)

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Timeout  time.Duration
}

type redisCache struct {
	client  *redis.Client
	logger  *slog.Logger
	prefix  string
	timeout time.Duration
	now     func() time.Time
}

// NewRedis constructs a Redis backed cache. An unreachable server is logged
// but not fatal: lookups simply miss until it comes back.
func NewRedis(opts RedisOptions, logger *slog.Logger) Cache {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Prefix == "" {
		opts.Prefix = defaultRedisPrefix
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultRedisTimeout
	}
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.Timeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
		MaxRetries:   -1,
	})
	rc := &redisCache{
		client:  client,
		logger:  logger,
		prefix:  opts.Prefix,
		timeout: opts.Timeout,
		now:     time.Now,
	}
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("token cache redis unreachable, continuing without it until it recovers", "addr", opts.Addr, "error", err)
	}
	return rc
}

func (rc *redisCache) Get(ctx context.Context, token string) (identity.Claims, bool) {
	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()

	raw, err := rc.client.Get(ctx, rc.prefix+hashKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			recordLookup("redis", resultMiss)
			return identity.Claims{}, false
		}
		rc.logRedisError("get", err)
		recordLookup("redis", resultError)
		return identity.Claims{}, false
	}
	var claims identity.Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		rc.logRedisError("decode", err)
		recordLookup("redis", resultError)
		return identity.Claims{}, false
	}
	if claims.Expired(rc.now()) {
		recordLookup("redis", resultMiss)
		return identity.Claims{}, false
	}
	recordLookup("redis", resultHit)
	return claims, true
}

func (rc *redisCache) Put(ctx context.Context, token string, claims identity.Claims, ttl time.Duration) {
	ttl = effectiveTTL(claims, ttl, rc.now())
	if ttl <= 0 {
		return
	}
	payload, err := json.Marshal(claims)
	if err != nil {
		rc.logRedisError("encode", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, rc.timeout)
	defer cancel()
	if err := rc.client.Set(ctx, rc.prefix+hashKey(token), payload, ttl).Err(); err != nil {
		rc.logRedisError("set", err)
	}
}

func (rc *redisCache) Close() error {
	if rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

func (rc *redisCache) logRedisError(op string, err error) {
	if rc.logger == nil {
		return
	}
	rc.logger.Warn("token cache redis error", "op", op, "error", err)
}
