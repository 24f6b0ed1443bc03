package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetters(t *testing.T) {
	t.Setenv("CFG_STRING", "value")
	t.Setenv("CFG_INT", " 42 ")
	t.Setenv("CFG_BAD_INT", "forty-two")
	t.Setenv("CFG_BOOL", "false")
	t.Setenv("CFG_SECONDS", "7")

	assert.Equal(t, "value", GetString("CFG_STRING", "fallback"))
	assert.Equal(t, "fallback", GetString("CFG_UNSET", "fallback"))
	assert.Equal(t, 42, GetInt("CFG_INT", 1))
	assert.Equal(t, 1, GetInt("CFG_BAD_INT", 1))
	assert.False(t, GetBool("CFG_BOOL", true))
	assert.True(t, GetBool("CFG_UNSET", true))
	assert.Equal(t, 7*time.Second, GetSeconds("CFG_SECONDS", time.Minute))
	assert.Equal(t, time.Minute, GetSeconds("CFG_UNSET", time.Minute))
}

func TestLoadAuthConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "   ")
	_, err := LoadAuthConfig()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoadAuthConfig(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")
	t.Setenv("AUTH_ADDR", ":9001")

	cfg, err := LoadAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, ":9001", cfg.Addr)
}

func TestLoadAuthConfigDefaultTTL(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "0")

	cfg, err := LoadAuthConfig()
	require.NoError(t, err)
	assert.Equal(t, 900*time.Second, cfg.AccessTokenTTL)
}

func TestLoadTaskConfigDefaults(t *testing.T) {
	cfg := LoadTaskConfig()
	assert.Equal(t, "Task Service", cfg.AppName)
	assert.Equal(t, 5*time.Second, cfg.AuthTimeout)
	assert.Equal(t, 250*time.Millisecond, cfg.CacheTimeout)
	assert.Equal(t, time.Minute, cfg.CacheFallbackTTL)
}

func TestLoadGatewayConfigOverrides(t *testing.T) {
	t.Setenv("TASK_SERVICE_URL", "http://task:8002")
	t.Setenv("UPSTREAM_TIMEOUT_SECONDS", "2")

	cfg := LoadGatewayConfig()
	assert.Equal(t, "http://task:8002", cfg.TaskServiceURL)
	assert.Equal(t, 2*time.Second, cfg.UpstreamTimeout)
}
