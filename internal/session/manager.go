package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pscheid92/vybe/internal/cache"
	"github.com/pscheid92/vybe/internal/domain"
	"github.com/pscheid92/vybe/internal/metrics"
)

const (
	invalidLoginMessage   = "Login failed: Invalid response from server"
	loginFailedMessage    = "Login failed"
	loginOKMessage        = "Login successful"
	registerFailedMessage = "Registration failed"
	registerOKMessage     = "Registration successful"
)

type Manager struct {
	auth    domain.AuthService
	tokens  domain.TokenStore
	cache   *cache.Cache
	logger  *slog.Logger
	metrics *metrics.SessionMetrics

	mu              sync.Mutex
	authenticated   bool
	authenticating  bool
	user            *domain.User
	fetchingProfile bool
	// generation changes whenever the persisted tokens are replaced or
	// cleared. A profile fetch started under an older generation is stale.
	generation   uint64
	listeners    map[int]func()
	nextListener int
}

type Option func(*Manager)

// WithCache makes Logout clear c.
func WithCache(c *cache.Cache) Option {
	return func(m *Manager) { m.cache = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func WithMetrics(sm *metrics.SessionMetrics) Option {
	return func(m *Manager) { m.metrics = sm }
}

// NewManager creates a manager in the anonymous state. Call Start to pick up
// persisted tokens.
func NewManager(auth domain.AuthService, tokens domain.TokenStore, opts ...Option) *Manager {
	m := &Manager{
		auth:      auth,
		tokens:    tokens,
		logger:    slog.Default(),
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start restores the session from persisted tokens. With an access token present
// the session becomes authenticated and the profile is fetched; a failed fetch
// logs out. Only a failure to read the token store is returned.
func (m *Manager) Start(ctx context.Context) error {
	pair, ok, err := m.tokens.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if !ok || pair.AccessToken == "" {
		return nil
	}

	m.update(func() { m.authenticated = true })

	if err := m.EnsureProfile(ctx); err != nil {
		m.logger.WarnContext(ctx, "Persisted session is no longer valid", "error", err)
	}
	return nil
}

// State returns the current state.
func (m *Manager) State() domain.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateLocked()
}

// Session returns a snapshot of the session.
func (m *Manager) Session() domain.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domain.Session{IsAuthenticated: m.authenticated, User: copyUser(m.user)}
}

// User returns the profile, or nil when none is loaded.
func (m *Manager) User() *domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyUser(m.user)
}

// OnReset registers fn to run after every logout. The returned function unsubscribes.
func (m *Manager) OnReset(fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextListener
	m.nextListener++
	m.listeners[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

func (m *Manager) stateLocked() domain.SessionState {
	switch {
	case m.authenticating:
		return domain.StateAuthenticating
	case !m.authenticated:
		return domain.StateAnonymous
	case m.user == nil:
		return domain.StateAuthenticatedNoProfile
	default:
		return domain.StateAuthenticated
	}
}

// update applies fn under the lock and records the resulting transition.
func (m *Manager) update(fn func()) {
	m.mu.Lock()
	before := m.stateLocked()
	fn()
	after := m.stateLocked()
	m.mu.Unlock()

	if before != after && m.metrics != nil {
		m.metrics.Transitions.WithLabelValues(after.String()).Inc()
	}
}

func (m *Manager) recordAttempt(operation string, ok bool) {
	if m.metrics == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.metrics.Attempts.WithLabelValues(operation, result).Inc()
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
