package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxsafe/internal/platform/config"
)

func TestNew(t *testing.T) {
	t.Run("empty URL disables redis", func(t *testing.T) {
		client, err := New(context.Background(), config.RedisConfig{})
		require.NoError(t, err)
		assert.Nil(t, client)
	})

	t.Run("invalid URL", func(t *testing.T) {
		_, err := New(context.Background(), config.RedisConfig{URL: "://nope"})
		assert.Error(t, err)
	})
}

func TestOptions(t *testing.T) {
	t.Run("overrides apply", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{
			URL:          "redis://cache:6380/2",
			PoolSize:     20,
			MinIdleConns: 3,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, "taxsafe", opts.ClientName)
		assert.Equal(t, 20, opts.PoolSize)
		assert.Equal(t, 3, opts.MinIdleConns)
		assert.Equal(t, 2*time.Second, opts.DialTimeout)
		assert.Equal(t, time.Second, opts.ReadTimeout)
	})

	t.Run("zero values keep URL defaults", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{URL: "redis://cache:6379/0?pool_size=7"})
		require.NoError(t, err)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Zero(t, opts.WriteTimeout)
	})
}
