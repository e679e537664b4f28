// Package request runs a single asynchronous fetch with loading/error/data
// state, consulting the request cache before calling the producer.
package request

import (
	"context"
	"sync"
	"time"

	"github.com/pscheid92/vybe/internal/cache"
	apperrors "github.com/pscheid92/vybe/internal/errors"
)

// DefaultCacheTTL applies when Options.CacheTTL is zero.
const DefaultCacheTTL = 5 * time.Minute

// Producer performs the underlying fetch.
type Producer[T any] func(ctx context.Context) (T, error)

type Options[T any] struct {
	// CacheKey enables caching when non-empty.
	CacheKey  string
	CacheTTL  time.Duration
	OnSuccess func(T)
	OnError   func(*apperrors.UserError)
}

// State is the UI-facing view of a request. Data is nil until a fetch succeeds
// and after a fetch fails.
type State[T any] struct {
	Data    *T
	Loading bool
	Err     *apperrors.UserError
}

// Request is safe for concurrent use. Overlapping Refetch calls are not
// cancelled; whichever resolves last determines the final state.
type Request[T any] struct {
	cache    *cache.Cache
	producer Producer[T]
	opts     Options[T]

	mu    sync.Mutex
	state State[T]
}

// New creates a request in the loading state. c may be nil, which disables caching.
func New[T any](c *cache.Cache, producer Producer[T], opts Options[T]) *Request[T] {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	return &Request[T]{
		cache:    c,
		producer: producer,
		opts:     opts,
		state:    State[T]{Loading: true},
	}
}

// State returns a snapshot of the current state.
func (r *Request[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Refetch runs one fetch and returns the state it produced.
func (r *Request[T]) Refetch(ctx context.Context) State[T] {
	r.mu.Lock()
	r.state.Loading = true
	r.state.Err = nil
	r.mu.Unlock()

	if r.cache != nil && r.opts.CacheKey != "" {
		if cached, ok := cache.Lookup[T](r.cache, r.opts.CacheKey, r.opts.CacheTTL); ok {
			return r.succeed(cached)
		}
	}

	value, err := r.produce(ctx)
	if err != nil {
		return r.fail(err)
	}

	if r.cache != nil && r.opts.CacheKey != "" {
		r.cache.Set(r.opts.CacheKey, value)
	}
	return r.succeed(value)
}

func (r *Request[T]) produce(ctx context.Context) (value T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &apperrors.PanicError{Value: p}
		}
	}()
	return r.producer(ctx)
}

func (r *Request[T]) succeed(value T) State[T] {
	st := State[T]{Data: &value}
	r.set(st)

	if r.opts.OnSuccess != nil {
		r.opts.OnSuccess(value)
	}
	return st
}

func (r *Request[T]) fail(err error) State[T] {
	st := State[T]{Err: apperrors.Normalize(err)}
	r.set(st)

	if r.opts.OnError != nil {
		r.opts.OnError(st.Err)
	}
	return st
}

func (r *Request[T]) set(st State[T]) {
	r.mu.Lock()
	r.state = st
	r.mu.Unlock()
}
