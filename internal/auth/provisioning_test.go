package auth

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"memberauth.org/internal/ids"
)

func TestProvisionAssignsRolesByAdminIdentifier(t *testing.T) {
	admin, err := Provision("admin@x.com", "Admin", "pw", fastBcrypt.Hash, "admin@x.com")
	if err != nil {
		t.Fatalf("Provision admin: %v", err)
	}
	if !reflect.DeepEqual(admin.Roles, []string{"ADMIN", "USER"}) {
		t.Fatalf("admin roles = %v", admin.Roles)
	}

	user, err := Provision("u@x.com", "User", "pw", fastBcrypt.Hash, "admin@x.com")
	if err != nil {
		t.Fatalf("Provision user: %v", err)
	}
	if !reflect.DeepEqual(user.Roles, []string{"USER"}) {
		t.Fatalf("user roles = %v", user.Roles)
	}

	nearMiss, err := Provision("Admin@x.com", "Admin", "pw", fastBcrypt.Hash, "admin@x.com")
	if err != nil {
		t.Fatalf("Provision near miss: %v", err)
	}
	if !reflect.DeepEqual(nearMiss.Roles, []string{"USER"}) {
		t.Fatalf("case variant must not be admin: %v", nearMiss.Roles)
	}
}

func TestProvisionNeverStoresPlaintext(t *testing.T) {
	acc, err := Provision("u@x.com", "User", "plain-secret", fastBcrypt.Hash, "")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if strings.Contains(acc.PasswordHash, "plain-secret") {
		t.Fatalf("plaintext leaked into hash: %q", acc.PasswordHash)
	}
	if ok, err := fastBcrypt.Matches("plain-secret", acc.PasswordHash); err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
	if acc.Status != StatusActive || !ids.Valid(acc.ID) || acc.CreatedAt.IsZero() {
		t.Fatalf("unexpected account defaults: %+v", acc)
	}
}

func TestProvisionErrors(t *testing.T) {
	if _, err := Provision("", "x", "pw", fastBcrypt.Hash, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := Provision("u@x.com", "x", "pw", nil, ""); err == nil {
		t.Fatalf("expected error for nil hash func")
	}
	boom := errors.New("boom")
	_, err := Provision("u@x.com", "x", "pw", func(string) (string, error) { return "", boom }, "")
	if !errors.Is(err, boom) {
		t.Fatalf("expected hash error to be wrapped, got %v", err)
	}
}

func TestRegistrarRegisterThenAuthenticate(t *testing.T) {
	store := newMemStore()
	verifier, err := NewDelegatingVerifier("bcrypt", map[string]CredentialVerifier{"bcrypt": fastBcrypt})
	if err != nil {
		t.Fatalf("NewDelegatingVerifier: %v", err)
	}
	reg, err := NewRegistrar(store, verifier, "admin@x.com")
	if err != nil {
		t.Fatalf("NewRegistrar: %v", err)
	}
	ctx := context.Background()

	acc, err := reg.Register(ctx, "admin@x.com", "Admin", "pw")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !strings.HasPrefix(acc.PasswordHash, "{bcrypt}") {
		t.Fatalf("expected delegating prefix: %q", acc.PasswordHash)
	}
	if _, err := reg.Register(ctx, "admin@x.com", "Again", "pw"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	p, err := NewPasswordProvider(store, verifier)
	if err != nil {
		t.Fatalf("NewPasswordProvider: %v", err)
	}
	identity, err := p.Authenticate(ctx, "admin@x.com", "pw")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !identity.HasAuthority("ROLE_ADMIN") || !identity.HasAuthority("ROLE_USER") {
		t.Fatalf("unexpected authorities: %v", identity.Authorities)
	}
}

func TestRegistrarWithdraw(t *testing.T) {
	store := newMemStore(Account{Identifier: "u@x.com", Status: StatusActive, Roles: []string{RoleUser}})
	reg, err := NewRegistrar(store, fastBcrypt, "")
	if err != nil {
		t.Fatalf("NewRegistrar: %v", err)
	}
	if err := reg.Withdraw(context.Background(), "u@x.com"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	acc, _ := store.FindByIdentifier(context.Background(), "u@x.com")
	if acc.Status != StatusWithdrawn {
		t.Fatalf("status = %s", acc.Status)
	}
	if err := reg.Withdraw(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
