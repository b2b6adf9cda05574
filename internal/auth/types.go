package auth

import "time"

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	StatusActive    AccountStatus = "ACTIVE"
	StatusDormant   AccountStatus = "DORMANT"
	StatusWithdrawn AccountStatus = "WITHDRAWN"
)

// Valid reports whether s is one of the known statuses.
func (s AccountStatus) Valid() bool {
	switch s {
	case StatusActive, StatusDormant, StatusWithdrawn:
		return true
	}
	return false
}

// Account is a registered member. Identifier is the login email and never changes after creation.
type Account struct {
	ID           string
	Identifier   string
	FullName     string
	PasswordHash string
	Status       AccountStatus
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CredentialKind identifies the shape of credentials a provider accepts.
type CredentialKind int

const (
	CredentialPassword CredentialKind = iota + 1
	CredentialBearer
)

func (k CredentialKind) String() string {
	switch k {
	case CredentialPassword:
		return "password"
	case CredentialBearer:
		return "bearer"
	default:
		return "unknown"
	}
}

// AuthenticatedIdentity is the result of a successful authentication.
type AuthenticatedIdentity struct {
	Identifier    string
	PasswordHash  string
	Authorities   []string
	Authenticated bool
}

// HasAuthority reports whether the identity was granted the given authority token.
func (i AuthenticatedIdentity) HasAuthority(authority string) bool {
	for _, a := range i.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}
