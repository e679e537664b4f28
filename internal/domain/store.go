package domain

import "context"

// Keys under which the token pair is persisted.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// KeyValueStore is durable string storage outside the process, the equivalent
// of browser local storage.
type KeyValueStore interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, bool, error)
	RemoveItem(ctx context.Context, key string) error
}

// TokenStore persists the token pair as a unit.
type TokenStore interface {
	Load(ctx context.Context) (TokenPair, bool, error)
	Save(ctx context.Context, pair TokenPair) error
	Clear(ctx context.Context) error
}
