package session

import (
	"context"
	"fmt"

	"github.com/pscheid92/vybe/internal/domain"
	apperrors "github.com/pscheid92/vybe/internal/errors"
	"github.com/pscheid92/vybe/internal/logging"
)

// Login authenticates and persists the returned token pair. A failure to fetch
// the profile afterwards is logged and leaves the session without a profile.
func (m *Manager) Login(ctx context.Context, email, password string) (result domain.Result) {
	defer func() {
		if p := recover(); p != nil {
			result = m.loginFailed(ctx, apperrors.Message(&apperrors.PanicError{Value: p}))
		}
	}()

	log := logging.WithOperation(m.logger, "login")
	m.update(func() { m.authenticating = true })

	resp, err := m.auth.Login(ctx, email, password)
	switch {
	case err != nil:
		log.WarnContext(ctx, "Login failed", "email", email, "error", err)
		return m.loginFailed(ctx, apperrors.Message(err))
	case resp == nil || resp.Tokens.Empty():
		return m.loginFailed(ctx, invalidLoginMessage)
	case !resp.Success:
		return m.loginFailed(ctx, messageOr(resp.Message, loginFailedMessage))
	}

	if err := m.tokens.Save(ctx, resp.Tokens); err != nil {
		log.ErrorContext(ctx, "Failed to persist tokens", "error", err)
		return m.loginFailed(ctx, apperrors.Message(err))
	}

	var gen uint64
	m.update(func() {
		m.authenticating = false
		m.authenticated = true
		m.user = nil
		m.fetchingProfile = true
		m.generation++
		gen = m.generation
	})
	if m.cache != nil {
		m.cache.Invalidate(CurrentUserCacheKey)
	}
	m.recordAttempt("login", true)

	user, err := m.fetchProfile(ctx)
	m.finishProfileFetch(gen, user, err)
	if err != nil {
		log.WarnContext(ctx, "Failed to fetch user data after login", "error", err)
	} else {
		logging.WithUser(log, user.ID).InfoContext(ctx, "Signed in")
	}

	return domain.Result{Success: true, Message: messageOr(resp.Message, loginOKMessage)}
}

func (m *Manager) loginFailed(ctx context.Context, message string) domain.Result {
	m.reset(ctx)
	m.recordAttempt("login", false)
	return domain.Result{Success: false, Message: message}
}

// Register creates an account. On success the returned user becomes the session
// user but no tokens are persisted: registering does not log in.
func (m *Manager) Register(ctx context.Context, email, password string) (result domain.Result) {
	defer func() {
		if p := recover(); p != nil {
			result = m.registerFailed(ctx, apperrors.Message(&apperrors.PanicError{Value: p}))
		}
	}()

	m.update(func() { m.authenticating = true })

	resp, err := m.auth.Register(ctx, email, password)
	switch {
	case err != nil:
		logging.WithOperation(m.logger, "register").WarnContext(ctx, "Registration failed", "email", email, "error", err)
		return m.registerFailed(ctx, apperrors.Message(err))
	case resp == nil:
		return m.registerFailed(ctx, registerFailedMessage)
	case !resp.Success:
		return m.registerFailed(ctx, messageOr(resp.Message, registerFailedMessage))
	}

	user := resp.User
	m.update(func() {
		m.authenticating = false
		m.user = &user
	})
	m.recordAttempt("register", true)

	return domain.Result{Success: true, Message: messageOr(resp.Message, registerOKMessage)}
}

func (m *Manager) registerFailed(ctx context.Context, message string) domain.Result {
	m.reset(ctx)
	m.recordAttempt("register", false)
	return domain.Result{Success: false, Message: message}
}

// Logout removes the tokens, clears the session and the request cache, and
// emits the reset event. It always succeeds; store failures are logged.
func (m *Manager) Logout(ctx context.Context) {
	m.reset(ctx)

	if m.cache != nil {
		m.cache.InvalidateAll()
	}

	m.mu.Lock()
	listeners := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		listeners = append(listeners, fn)
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// EnsureProfile fetches the profile when the session holds tokens but no user.
// It does nothing in any other state or while a fetch is already running.
// A failed fetch logs out and the normalized error is returned.
func (m *Manager) EnsureProfile(ctx context.Context) error {
	m.mu.Lock()
	if m.stateLocked() != domain.StateAuthenticatedNoProfile || m.fetchingProfile {
		m.mu.Unlock()
		return nil
	}
	m.fetchingProfile = true
	gen := m.generation
	m.mu.Unlock()

	user, err := m.fetchProfile(ctx)
	current := m.finishProfileFetch(gen, user, err)
	if err == nil {
		return nil
	}
	log := logging.WithOperation(m.logger, "ensureProfile")
	if !current {
		log.InfoContext(ctx, "Ignoring failed profile fetch of a replaced session", "error", err)
		return nil
	}

	log.ErrorContext(ctx, "Failed to fetch user data", "error", err)
	if m.metrics != nil {
		m.metrics.ForcedResets.Inc()
	}
	m.Logout(ctx)
	return apperrors.Normalize(err)
}

// finishProfileFetch applies a fetch result if no login or logout happened since
// the fetch started, and reports whether it did. A fresh profile also seeds the
// current-user request cache.
func (m *Manager) finishProfileFetch(gen uint64, user *domain.User, err error) bool {
	current := false
	m.update(func() {
		if m.generation != gen {
			return
		}
		current = true
		m.fetchingProfile = false
		if err == nil && m.authenticated {
			m.user = user
		}
	})
	if current && err == nil && m.cache != nil {
		m.cache.Set(CurrentUserCacheKey, *user)
	}
	return current
}

func (m *Manager) fetchProfile(ctx context.Context) (user *domain.User, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &apperrors.PanicError{Value: p}
		}
	}()

	user, err = m.auth.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch current user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

// reset clears tokens and returns to the anonymous state.
func (m *Manager) reset(ctx context.Context) {
	if err := m.tokens.Clear(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to remove persisted tokens", "error", err)
	}
	m.update(func() {
		m.authenticating = false
		m.authenticated = false
		m.user = nil
		m.fetchingProfile = false
		m.generation++
	})
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
