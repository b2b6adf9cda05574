package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"memberauth.org/internal/ids"
)

// Provision builds a ready-to-persist account. The plaintext secret is only ever passed to hash.
func Provision(email, fullName, plaintextPassword string, hash HashFunc, adminIdentifier string) (Account, error) {
	if email == "" {
		return Account{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if hash == nil {
		return Account{}, errors.New("auth: hash function is required")
	}
	encoded, err := hash(plaintextPassword)
	if err != nil {
		return Account{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	return Account{
		ID:           ids.New(),
		Identifier:   email,
		FullName:     fullName,
		PasswordHash: encoded,
		Status:       StatusActive,
		Roles:        DecideInitialRoles(email, adminIdentifier),
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Registrar provisions accounts and persists them.
type Registrar struct {
	store           AccountStore
	verifier        CredentialVerifier
	adminIdentifier string
}

// NewRegistrar wires provisioning to a store. adminIdentifier may be empty, in which case no
// account is ever made admin.
func NewRegistrar(store AccountStore, verifier CredentialVerifier, adminIdentifier string) (*Registrar, error) {
	if store == nil {
		return nil, errors.New("auth: account store is required")
	}
	if verifier == nil {
		return nil, errors.New("auth: credential verifier is required")
	}
	return &Registrar{store: store, verifier: verifier, adminIdentifier: adminIdentifier}, nil
}

// Register provisions and stores a new account. A duplicate identifier yields ErrAlreadyExists.
func (r *Registrar) Register(ctx context.Context, email, fullName, password string) (Account, error) {
	account, err := Provision(email, fullName, password, r.verifier.Hash, r.adminIdentifier)
	if err != nil {
		return Account{}, err
	}
	if err := r.store.Create(ctx, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}

// Withdraw soft-retires an account.
func (r *Registrar) Withdraw(ctx context.Context, email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return r.store.UpdateStatus(ctx, email, StatusWithdrawn)
}
