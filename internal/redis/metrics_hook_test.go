package redis

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/pscheid92/vybe/internal/metrics"
)

func TestMetricsHook_CountsOperations(t *testing.T) {
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())
	hook := NewMetricsHook(m)
	ctx := context.Background()

	_ = hook.ProcessHook(replyWith(nil))(ctx, goredis.NewStringCmd(ctx, "get", "k"))
	_ = hook.ProcessHook(func(ctx context.Context, cmd goredis.Cmder) error { return goredis.Nil })(ctx, goredis.NewStringCmd(ctx, "get", "k"))
	_ = hook.ProcessHook(replyWith(errors.New("boom")))(ctx, goredis.NewStatusCmd(ctx, "set", "k", "v"))
	_ = hook.ProcessPipelineHook(func(ctx context.Context, cmds []goredis.Cmder) error { return nil })(ctx, nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.OpsTotal.WithLabelValues("get", "success")), "A nil reply is not an error")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpsTotal.WithLabelValues("set", "error")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.OpsTotal.WithLabelValues("pipeline", "success")))
}

func TestMetricsHook_CountsDialErrors(t *testing.T) {
	m := metrics.NewRedisMetrics(prometheus.NewRegistry())
	hook := NewMetricsHook(m)

	dial := hook.DialHook(func(ctx context.Context, network, addr string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	})
	_, err := dial(context.Background(), "tcp", "127.0.0.1:1")

	assert.Error(t, err)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ConnectionErrors))
}
