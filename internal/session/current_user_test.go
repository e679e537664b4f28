package session

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/vybe/internal/cache"
	"github.com/pscheid92/vybe/internal/domain"
)

func TestCurrentUserRequest_SharesCacheEntry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := cache.New(clock)
	auth := &mockAuthService{currentUserFn: profileOK}

	first := NewCurrentUserRequest(auth, c).Refetch(context.Background())
	second := NewCurrentUserRequest(auth, c).Refetch(context.Background())

	require.NotNil(t, first.Data)
	require.NotNil(t, second.Data)
	assert.Equal(t, testUser, *second.Data)
	assert.Equal(t, int32(1), auth.profileCalls.Load())

	clock.Advance(CurrentUserCacheTTL + time.Second)
	NewCurrentUserRequest(auth, c).Refetch(context.Background())
	assert.Equal(t, int32(2), auth.profileCalls.Load(), "Expired entry is refetched")
}

func TestCurrentUserRequest_LogoutDropsCachedProfile(t *testing.T) {
	c := cache.New(clockwork.NewFakeClock())
	auth := &mockAuthService{loginFn: loginOK, currentUserFn: profileOK}
	m := NewManager(auth, newMemoryTokens(), WithCache(c))

	NewCurrentUserRequest(auth, c).Refetch(context.Background())
	m.Logout(context.Background())

	_, ok := cache.Lookup[domain.User](c, CurrentUserCacheKey, CurrentUserCacheTTL)
	assert.False(t, ok)
}

func TestCurrentUserRequest_NilUser(t *testing.T) {
	auth := &mockAuthService{currentUserFn: func(ctx context.Context) (*domain.User, error) { return nil, nil }}

	st := NewCurrentUserRequest(auth, nil).Refetch(context.Background())

	assert.Nil(t, st.Data)
	require.NotNil(t, st.Err)
	assert.Equal(t, domain.ErrUserNotFound.Error(), st.Err.Message)
}

func TestCurrentUserRequestTTL_CustomWindow(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := cache.New(clock)
	auth := &mockAuthService{currentUserFn: profileOK}

	NewCurrentUserRequestTTL(auth, c, time.Minute).Refetch(context.Background())
	clock.Advance(time.Minute)
	NewCurrentUserRequestTTL(auth, c, time.Minute).Refetch(context.Background())

	assert.Equal(t, int32(2), auth.profileCalls.Load(), "Entries at exactly the TTL are stale")
}

func TestCurrentUserRequest_UsesProfileLoadedByManager(t *testing.T) {
	c := cache.New(clockwork.NewFakeClock())
	auth := &mockAuthService{loginFn: loginOK, currentUserFn: profileOK}
	tokens := newMemoryTokens()
	require.NoError(t, tokens.Save(context.Background(), testPair))
	m := NewManager(auth, tokens, WithCache(c))

	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, int32(1), auth.profileCalls.Load())

	st := NewCurrentUserRequest(auth, c).Refetch(context.Background())

	require.NotNil(t, st.Data)
	assert.Equal(t, testUser, *st.Data)
	assert.Equal(t, int32(1), auth.profileCalls.Load(), "Profile from Start is reused")

	require.True(t, m.Login(context.Background(), testUser.Email, "s3cret").Success)
	NewCurrentUserRequest(auth, c).Refetch(context.Background())
	assert.Equal(t, int32(2), auth.profileCalls.Load(), "Login fetches once and seeds the cache")
}
