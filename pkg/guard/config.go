package guard

import (
	"fmt"
	"log/slog"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/api/client"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/config"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/tokencache"
)

// FromConfig wires a Guard for a resource service: an auth service client as
// the origin and the configured cache backend. Callers close the returned
// cache on shutdown.
func FromConfig(cfg config.ResourceConfig, logger *slog.Logger) (*Guard, tokencache.Cache, error) {
	origin, err := client.New(cfg.AuthServiceURL, client.WithTimeout(cfg.AuthTimeout))
	if err != nil {
		return nil, nil, fmt.Errorf("auth client: %w", err)
	}
	cache := tokencache.Open(cfg.CacheBackend, tokencache.RedisOptions{
		Addr:     cfg.CacheRedisAddr,
		Password: cfg.CacheRedisPassword,
		DB:       cfg.CacheRedisDB,
		Timeout:  cfg.CacheTimeout,
	}, logger)
	g := New(cache, origin, logger,
		WithTimeout(cfg.AuthTimeout),
		WithFallbackTTL(cfg.CacheFallbackTTL),
	)
	return g, cache, nil
}
