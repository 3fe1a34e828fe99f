package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadVaultConfig_Defaults(t *testing.T) {
	c := LoadVaultConfig()
	assert.Equal(t, 120*time.Hour, c.ShareCodeExpiry)
	assert.Equal(t, 12, c.MinSecretLength)
	assert.Equal(t, 30*time.Minute, c.GrantTTL)
	assert.Equal(t, "vault", c.S3Bucket)
}

func TestLoadVaultConfig_Overrides(t *testing.T) {
	t.Setenv("SHARE_CODE_EXPIRY", "48h")
	t.Setenv("SHARE_CODE_MIN_LENGTH", "4")
	t.Setenv("SHARE_GRANT_TTL", "-1s")

	c := LoadVaultConfig()
	assert.Equal(t, 48*time.Hour, c.ShareCodeExpiry)
	assert.Equal(t, 8, c.MinSecretLength, "minimum length is clamped")
	assert.Equal(t, 30*time.Minute, c.GrantTTL)
}

func TestLoadLockoutConfig(t *testing.T) {
	c := LoadLockoutConfig()
	assert.Equal(t, 5, c.Threshold)
	assert.Equal(t, 15*time.Minute, c.Window)

	t.Setenv("SHARE_CODE_MAX_ATTEMPTS", "0")
	t.Setenv("SHARE_CODE_LOCKOUT", "bogus")
	c = LoadLockoutConfig()
	assert.Equal(t, 1, c.Threshold)
	assert.Equal(t, 15*time.Minute, c.Window)
}

func TestLoadRateLimitConfig_TTLFloor(t *testing.T) {
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	c := LoadRateLimitConfig()
	assert.Equal(t, 5*time.Minute, c.TTL)
}

func TestLoadCacheConfig_Methods(t *testing.T) {
	t.Setenv("CACHE_METHODS", " get, head ,")
	c := LoadCacheConfig()
	require.Len(t, c.Methods, 2)
	assert.True(t, c.Methods["GET"])
	assert.True(t, c.Methods["HEAD"])
}

func TestLoad_OptionalValues(t *testing.T) {
	for k, v := range map[string]string{
		"APP_ENV": "test", "APP_PORT": "8080", "DB_USER": "u", "DB_HOST": "h",
		"DB_PORT": "3306", "DB_NAME": "zb", "JWT_SECRET": "s",
		"ACCESS_TOKEN_TTL_MIN": "15", "REFRESH_TOKEN_TTL_DAYS": "7", "BCRYPT_COST": "4",
		"RABBITMQ_URL": "amqp://x/", "DB_MIGRATE": "off",
	} {
		t.Setenv(k, v)
	}
	c := Load()
	assert.Equal(t, "amqp://x/", c.AMQPURL)
	assert.False(t, c.RunMigrations)
	assert.Equal(t, "INR", c.Currency)
	assert.Equal(t, 15, c.AccessTTLMin)
}

func TestLoadRedisConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	c := LoadRedisConfig()
	assert.Equal(t, "cache:6380", c.Addr)
	assert.Equal(t, 2, c.DB)

	t.Setenv("REDIS_HOST", "redis")
	t.Setenv("REDIS_PORT", "6379")
	assert.Equal(t, "redis:6379", LoadRedisConfig().Addr)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	client, err := NewRedisClient(context.Background(), RedisConfig{Addr: addr})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()

	mr.Close()
	client, err = NewRedisClient(context.Background(), RedisConfig{Addr: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}
