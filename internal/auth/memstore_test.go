package auth

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// memStore is an in-memory AccountStore for tests.
type memStore struct {
	mu       sync.RWMutex
	accounts map[string]Account
}

var _ AccountStore = (*memStore)(nil)

func newMemStore(accounts ...Account) *memStore {
	s := &memStore{accounts: make(map[string]Account)}
	for _, a := range accounts {
		s.accounts[a.Identifier] = a
	}
	return s
}

func (s *memStore) FindByIdentifier(_ context.Context, identifier string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[identifier]
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", identifier, ErrNotFound)
	}
	return a, nil
}

func (s *memStore) Create(_ context.Context, account *Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.Identifier]; ok {
		return ErrAlreadyExists
	}
	s.accounts[account.Identifier] = *account
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, identifier string, status AccountStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[identifier]
	if !ok {
		return ErrNotFound
	}
	a.Status = status
	s.accounts[identifier] = a
	return nil
}

var fastBcrypt = BcryptVerifier{Cost: bcrypt.MinCost}

var fastArgon2 = Argon2Verifier{Memory: 1024, Iterations: 1, Parallelism: 1, KeyLength: 32, SaltLength: 16}
