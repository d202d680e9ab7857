package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/fieldcare/config"
)

func TestFromCentralConfigDefaults(t *testing.T) {
	cfg := FromCentralConfig(config.RedisConfig{Addr: "cache:6379", PoolSize: 32})

	assert.Equal(t, "cache:6379", cfg.Addr)
	assert.Equal(t, 32, cfg.PoolSize)
	assert.Equal(t, DefaultConfig().MinIdleConns, cfg.MinIdleConns)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout())
	assert.Equal(t, 3*time.Second, cfg.ReadTimeout())
}

func TestNewRedisRequiresAddr(t *testing.T) {
	_, err := NewRedis(t.Context(), Config{})
	assert.Error(t, err)
}

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedis(t.Context(), FromCentralConfig(config.RedisConfig{Addr: mr.Addr()}))
	require.NoError(t, err)
	defer rdb.Close()

	mr.Close()
	_, err = NewRedis(t.Context(), FromCentralConfig(config.RedisConfig{Addr: mr.Addr(), DialTimeoutSeconds: 1}))
	assert.Error(t, err)
}
