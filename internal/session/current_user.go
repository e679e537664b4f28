package session

import (
	"context"
	"time"

	"github.com/pscheid92/vybe/internal/cache"
	"github.com/pscheid92/vybe/internal/domain"
	"github.com/pscheid92/vybe/internal/request"
)

const (
	CurrentUserCacheKey = "currentUser"
	CurrentUserCacheTTL = 5 * time.Minute
)

// NewCurrentUserRequest returns a cached request for the authenticated user's
// profile, fresh for CurrentUserCacheTTL.
func NewCurrentUserRequest(auth domain.AuthService, c *cache.Cache) *request.Request[domain.User] {
	return NewCurrentUserRequestTTL(auth, c, CurrentUserCacheTTL)
}

// NewCurrentUserRequestTTL is NewCurrentUserRequest with a custom freshness window.
func NewCurrentUserRequestTTL(auth domain.AuthService, c *cache.Cache, ttl time.Duration) *request.Request[domain.User] {
	return request.New(c, func(ctx context.Context) (domain.User, error) {
		user, err := auth.CurrentUser(ctx)
		if err != nil {
			return domain.User{}, err
		}
		if user == nil {
			return domain.User{}, domain.ErrUserNotFound
		}
		return *user, nil
	}, request.Options[domain.User]{
		CacheKey: CurrentUserCacheKey,
		CacheTTL: ttl,
	})
}
