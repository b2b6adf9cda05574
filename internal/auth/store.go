package auth

import "context"

// AccountLookup resolves accounts by login identifier. Implementations must return an error
// wrapping ErrNotFound when no account exists, and must be safe for concurrent reads.
type AccountLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (Account, error)
}

// AccountStore is the write side of the account repository.
type AccountStore interface {
	AccountLookup
	Create(ctx context.Context, account *Account) error
	UpdateStatus(ctx context.Context, identifier string, status AccountStatus) error
}
