package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/vybe/internal/metrics"
)

type clientOptions struct {
	metrics *metrics.RedisMetrics
	breaker *CircuitBreakerHook
}

type Option func(*clientOptions)

// WithMetrics installs a MetricsHook recording into m.
func WithMetrics(m *metrics.RedisMetrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithCircuitBreaker replaces the default circuit-breaker hook.
func WithCircuitBreaker(h *CircuitBreakerHook) Option {
	return func(o *clientOptions) { o.breaker = h }
}

// NewClient creates a Redis client from a URL (e.g., "redis://localhost:6379"),
// installs the hooks and verifies the connection.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*goredis.Client, error) {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := goredis.NewClient(parsed)

	if o.metrics != nil {
		rdb.AddHook(&MetricsHook{metrics: o.metrics})
	}
	if o.breaker == nil {
		o.breaker = NewCircuitBreakerHook(o.metrics)
	}
	rdb.AddHook(o.breaker)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}
