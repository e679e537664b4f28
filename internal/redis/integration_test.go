package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/pscheid92/vybe/internal/domain"
	"github.com/pscheid92/vybe/internal/tokenstore"
)

func TestIntegration_TokenStoreOnRealRedis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	rdb, err := NewClient(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	tokens := tokenstore.New(NewKVStore(rdb))
	pair := domain.TokenPair{AccessToken: "jwt-access", RefreshToken: "opaque-refresh"}

	require.NoError(t, tokens.Save(ctx, pair))
	got, ok, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pair, got)

	require.NoError(t, tokens.Clear(ctx))
	keys, err := rdb.Keys(ctx, DefaultKeyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
