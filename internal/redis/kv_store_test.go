package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/vybe/internal/domain"
	"github.com/pscheid92/vybe/internal/metrics"
	"github.com/pscheid92/vybe/internal/tokenstore"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *goredis.Client, *metrics.RedisMetrics) {
	t.Helper()
	mr := miniredis.RunT(t)
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())

	rdb, err := NewClient(context.Background(), "redis://"+mr.Addr(), WithMetrics(m))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb, m
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), "redis://"+addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestKVStore_SetGetRemove(t *testing.T) {
	mr, rdb, m := setupMiniredis(t)
	store := NewKVStore(rdb)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "accessToken", "jwt-access"))
	raw, err := mr.Get("vybe:kv:accessToken")
	require.NoError(t, err, "Keys carry the prefix")
	assert.Equal(t, "jwt-access", raw)
	assert.Zero(t, mr.TTL("vybe:kv:accessToken"), "Items do not expire")

	v, ok, err := store.GetItem(ctx, "accessToken")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "jwt-access", v)

	require.NoError(t, store.RemoveItem(ctx, "accessToken"))
	_, ok, err = store.GetItem(ctx, "accessToken")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpsTotal.WithLabelValues("set", "success")))
}

func TestKVStore_CustomPrefix(t *testing.T) {
	mr, rdb, _ := setupMiniredis(t)
	store := NewKVStoreWithPrefix(rdb, "tenant-a:")

	require.NoError(t, store.SetItem(context.Background(), "refreshToken", "r1"))
	assert.True(t, mr.Exists("tenant-a:refreshToken"))
}

func TestKVStore_BacksTokenStore(t *testing.T) {
	_, rdb, _ := setupMiniredis(t)
	tokens := tokenstore.New(NewKVStore(rdb))
	ctx := context.Background()
	pair := domain.TokenPair{AccessToken: "a", RefreshToken: "r"}

	require.NoError(t, tokens.Save(ctx, pair))
	got, ok, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pair, got)

	require.NoError(t, tokens.Clear(ctx))
	_, ok, err = tokens.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVStore_ServerErrorIsReturned(t *testing.T) {
	mr, rdb, _ := setupMiniredis(t)
	store := NewKVStore(rdb)
	mr.SetError("ERR injected failure")

	_, _, err := store.GetItem(context.Background(), "accessToken")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "get item")
}
