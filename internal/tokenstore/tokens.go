package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pscheid92/vybe/internal/domain"
)

// Tokens implements domain.TokenStore on a domain.KeyValueStore.
type Tokens struct {
	mu sync.Mutex
	kv domain.KeyValueStore
}

var _ domain.TokenStore = (*Tokens)(nil)

func New(kv domain.KeyValueStore) *Tokens {
	return &Tokens{kv: kv}
}

// Load returns the persisted pair. The pair counts as present when an access
// token is stored.
func (t *Tokens) Load(ctx context.Context) (domain.TokenPair, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	access, ok, err := t.kv.GetItem(ctx, domain.AccessTokenKey)
	if err != nil {
		return domain.TokenPair{}, false, fmt.Errorf("failed to read access token: %w", err)
	}
	if !ok || access == "" {
		return domain.TokenPair{}, false, nil
	}

	refresh, _, err := t.kv.GetItem(ctx, domain.RefreshTokenKey)
	if err != nil {
		return domain.TokenPair{}, false, fmt.Errorf("failed to read refresh token: %w", err)
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, true, nil
}

// Save writes both tokens. If the second write fails the first is rolled back.
func (t *Tokens) Save(ctx context.Context, pair domain.TokenPair) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.kv.SetItem(ctx, domain.RefreshTokenKey, pair.RefreshToken); err != nil {
		return fmt.Errorf("failed to write refresh token: %w", err)
	}
	if err := t.kv.SetItem(ctx, domain.AccessTokenKey, pair.AccessToken); err != nil {
		rollbackErr := t.kv.RemoveItem(ctx, domain.RefreshTokenKey)
		return errors.Join(fmt.Errorf("failed to write access token: %w", err), rollbackErr)
	}
	return nil
}

// Clear removes both tokens. Both removals are attempted even if one fails.
func (t *Tokens) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var errs []error
	if err := t.kv.RemoveItem(ctx, domain.RefreshTokenKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove refresh token: %w", err))
	}
	if err := t.kv.RemoveItem(ctx, domain.AccessTokenKey); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove access token: %w", err))
	}
	return errors.Join(errs...)
}
