package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/vybe/internal/authapi"
	"github.com/pscheid92/vybe/internal/cache"
	"github.com/pscheid92/vybe/internal/config"
	"github.com/pscheid92/vybe/internal/crypto"
	"github.com/pscheid92/vybe/internal/domain"
	"github.com/pscheid92/vybe/internal/metrics"
	"github.com/pscheid92/vybe/internal/redis"
	"github.com/pscheid92/vybe/internal/session"
	"github.com/pscheid92/vybe/internal/sqlite"
	"github.com/pscheid92/vybe/internal/tokenstore"
)

// app is the wiring of one CLI invocation.
type app struct {
	cfg     *config.Config
	client  *authapi.Client
	cache   *cache.Cache
	manager *session.Manager
	ping    func(context.Context) error
	close   func()
}

// tokenBackend is the opened persistence behind the token store.
type tokenBackend struct {
	kv    domain.KeyValueStore
	ping  func(context.Context) error
	close func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	reg := prometheus.NewRegistry()

	backend, err := setupKeyValueStore(ctx, cfg, reg)
	if err != nil {
		return nil, err
	}
	kv := backend.kv

	if cfg.EncryptionKey != "" {
		c, err := crypto.NewAESGCM(cfg.EncryptionKey)
		if err != nil {
			backend.close()
			return nil, fmt.Errorf("failed to set up token encryption: %w", err)
		}
		kv = crypto.NewEncryptedStore(kv, c)
	}

	tokens := tokenstore.New(kv)
	client := authapi.NewClient(cfg.APIBaseURL, tokens,
		authapi.WithTimeout(cfg.HTTPTimeout),
		authapi.WithMetrics(metrics.NewClientMetrics(reg)),
	)
	c := cache.New(clockwork.NewRealClock(), cache.WithMetrics(metrics.NewCacheMetrics(reg)))
	manager := session.NewManager(client, tokens,
		session.WithCache(c),
		session.WithMetrics(metrics.NewSessionMetrics(reg)),
	)

	manager.OnReset(func() {
		slog.DebugContext(ctx, "Session reset, cached requests dropped")
	})

	return &app{cfg: cfg, client: client, cache: c, manager: manager, ping: backend.ping, close: backend.close}, nil
}

func setupKeyValueStore(ctx context.Context, cfg *config.Config, reg prometheus.Registerer) (tokenBackend, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return tokenBackend{
			kv:    tokenstore.NewMemory(),
			ping:  func(context.Context) error { return nil },
			close: func() {},
		}, nil

	case config.TokenStoreRedis:
		rdb, err := redis.NewClient(ctx, cfg.RedisURL, redis.WithMetrics(metrics.NewRedisMetrics(reg)))
		if err != nil {
			return tokenBackend{}, fmt.Errorf("failed to open redis token store: %w", err)
		}
		return tokenBackend{
			kv:    redis.NewKVStore(rdb),
			ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			close: func() { _ = rdb.Close() },
		}, nil

	default:
		store, err := sqlite.Open(cfg.TokenStorePath)
		if err != nil {
			return tokenBackend{}, fmt.Errorf("failed to open sqlite token store: %w", err)
		}
		return tokenBackend{kv: store, ping: store.Ping, close: func() { _ = store.Close() }}, nil
	}
}
