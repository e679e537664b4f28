package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/vybe/internal/domain"
)

// DefaultKeyPrefix namespaces every key written by KVStore.
const DefaultKeyPrefix = "vybe:kv:"

var _ domain.KeyValueStore = (*KVStore)(nil)

// KVStore is a domain.KeyValueStore on Redis strings without expiry.
type KVStore struct {
	rdb    goredis.Cmdable
	prefix string
}

// NewKVStore creates a store using DefaultKeyPrefix.
func NewKVStore(rdb goredis.Cmdable) *KVStore {
	return NewKVStoreWithPrefix(rdb, DefaultKeyPrefix)
}

func NewKVStoreWithPrefix(rdb goredis.Cmdable, prefix string) *KVStore {
	return &KVStore{rdb: rdb, prefix: prefix}
}

func (s *KVStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set item %q: %w", key, err)
	}
	return nil
}

func (s *KVStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get item %q: %w", key, err)
	}
	return value, true, nil
}

func (s *KVStore) RemoveItem(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("remove item %q: %w", key, err)
	}
	return nil
}
