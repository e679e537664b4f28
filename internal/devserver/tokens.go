package devserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs HS256 access tokens and tracks opaque refresh tokens.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	clock     clockwork.Clock

	mu      sync.Mutex
	refresh map[string]string // refresh token -> user id
}

func NewTokenIssuer(secret []byte, accessTTL time.Duration, clock clockwork.Clock) *TokenIssuer {
	return &TokenIssuer{
		secret:    secret,
		accessTTL: accessTTL,
		clock:     clock,
		refresh:   make(map[string]string),
	}
}

// Issue returns a signed access token and a new refresh token for userID.
func (t *TokenIssuer) Issue(userID string) (access, refresh string, err error) {
	access, err = t.sign(userID)
	if err != nil {
		return "", "", err
	}

	refresh = uuid.NewString()
	t.mu.Lock()
	t.refresh[refresh] = userID
	t.mu.Unlock()

	return access, refresh, nil
}

// SelfCheck signs and verifies a throwaway token. No refresh token is recorded.
func (t *TokenIssuer) SelfCheck(_ context.Context) error {
	const subject = "readiness-check"

	access, err := t.sign(subject)
	if err != nil {
		return err
	}
	got, err := t.Verify(access)
	if err != nil {
		return fmt.Errorf("verify self-check token: %w", err)
	}
	if got != subject {
		return fmt.Errorf("self-check token subject mismatch: %q", got)
	}
	return nil
}

func (t *TokenIssuer) sign(userID string) (string, error) {
	now := t.clock.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.accessTTL)),
	}

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return access, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
func (t *TokenIssuer) Verify(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(t.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || token == nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// RevokeUser drops every refresh token of userID and returns how many there were.
func (t *TokenIssuer) RevokeUser(userID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for token, owner := range t.refresh {
		if owner == userID {
			delete(t.refresh, token)
			n++
		}
	}
	return n
}
