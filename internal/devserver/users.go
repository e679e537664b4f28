package devserver

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pscheid92/vybe/internal/domain"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type account struct {
	user         domain.User
	passwordHash []byte
}

// UserStore is an in-memory user registry keyed by normalized email.
type UserStore struct {
	mu      sync.RWMutex
	byEmail map[string]*account
	byID    map[string]*account
	cost    int
}

func NewUserStore() *UserStore {
	return &UserStore{
		byEmail: make(map[string]*account),
		byID:    make(map[string]*account),
		cost:    bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an active user. A taken email yields domain.ErrEmailTaken.
func (s *UserStore) Register(email, password string) (domain.User, error) {
	key := normalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[key]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}

	acc := &account{
		user:         domain.User{ID: uuid.NewString(), Email: key, IsActive: true},
		passwordHash: hash,
	}
	s.byEmail[key] = acc
	s.byID[acc.user.ID] = acc
	return acc.user, nil
}

// Authenticate returns the user whose password matches.
func (s *UserStore) Authenticate(email, password string) (domain.User, error) {
	s.mu.RLock()
	acc, ok := s.byEmail[normalizeEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return acc.user, nil
}

func (s *UserStore) Get(id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return acc.user, nil
}

// Count returns the number of registered users.
func (s *UserStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
