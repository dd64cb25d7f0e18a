package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisad "stayfinder/internal/adapters/redis"
	"stayfinder/internal/shared"
)

func TestOpen_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := Open(context.Background(), shared.Config{StoreBackend: shared.BackendRedis, RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer b.Close()

	assert.IsType(t, &redisad.Store{}, b.Hotels)
	assert.Same(t, b.Hotels, b.Reservations)
}

func TestOpen_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Open(context.Background(), shared.Config{StoreBackend: shared.BackendRedis, RedisAddr: addr})
	assert.Error(t, err)
}
