package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisClient_Disabled(t *testing.T) {
	t.Parallel()

	rdb, err := NewRedisClient(context.Background(), Config{})

	require.NoError(t, err)
	assert.Nil(t, rdb)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	// Port 1 on loopback refuses connections.
	rdb, err := NewRedisClient(context.Background(), Config{Addr: "127.0.0.1:1"})

	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestConfig_Enabled(t *testing.T) {
	t.Parallel()

	assert.False(t, Config{}.Enabled())
	assert.True(t, Config{Addr: "localhost:6379"}.Enabled())
}
