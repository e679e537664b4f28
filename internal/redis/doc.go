// Package redis implements the Redis-backed token store.
//
// NewClient returns a go-redis client with a metrics hook and a circuit-breaker
// hook installed. KVStore keeps key-value items under a common key prefix.
package redis
