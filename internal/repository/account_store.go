package repository

import (
	"errors"
	"strings"
	"sync"

	"github.com/adyen/storefront-e2e/internal/models"
)

// Account store errors
var (
	ErrAccountExists   = errors.New("email is already used")
	ErrAccountNotFound = errors.New("account not found")
)

// AccountStore keeps registered fixture users in memory, keyed by lower-cased email
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]models.User
}

// NewAccountStore creates a store seeded with the given users
func NewAccountStore(seed ...models.User) *AccountStore {
	s := &AccountStore{accounts: make(map[string]models.User)}
	for _, u := range seed {
		s.accounts[key(u.Email)] = u
	}
	return s
}

// Create registers u unless the email is taken
func (s *AccountStore) Create(u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(u.Email)
	if _, ok := s.accounts[k]; ok {
		return ErrAccountExists
	}
	s.accounts[k] = u
	return nil
}

// Find looks up an account by email
func (s *AccountStore) Find(email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.accounts[key(email)]
	if !ok {
		return models.User{}, ErrAccountNotFound
	}
	return u, nil
}

func key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
