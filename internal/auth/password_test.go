package auth

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestBcryptVerifier(t *testing.T) {
	hash, err := fastBcrypt.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("unexpected bcrypt hash: %q", hash)
	}
	ok, err := fastBcrypt.Matches("secret", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = fastBcrypt.Matches("wrong", hash)
	if err != nil || ok {
		t.Fatalf("expected clean mismatch, got ok=%v err=%v", ok, err)
	}
	if _, err := fastBcrypt.Matches("secret", ""); err == nil {
		t.Fatalf("expected error for empty hash")
	}
	if _, err := fastBcrypt.Hash(""); err == nil {
		t.Fatalf("expected error for empty password")
	}
}

func TestArgon2Verifier(t *testing.T) {
	hash, err := fastArgon2.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected encoding: %q", hash)
	}
	ok, err := fastArgon2.Matches("secret", hash)
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = fastArgon2.Matches("wrong", hash)
	if err != nil || ok {
		t.Fatalf("expected clean mismatch, got ok=%v err=%v", ok, err)
	}

	second, err := fastArgon2.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if second == hash {
		t.Fatalf("expected random salt to change the encoding")
	}
}

func TestArgon2VerifierRejectsMalformedHashes(t *testing.T) {
	b64 := base64.RawStdEncoding.EncodeToString
	salt := b64([]byte("saltsaltsaltsalt"))
	key := b64([]byte(strings.Repeat("k", 32)))
	for _, hash := range []string{
		"",
		"$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1048576,t=1,p=1$" + salt + "$" + key,
		"$argon2id$v=19$m=1024,t=100000,p=1$" + salt + "$" + key,
		"$argon2id$v=19$m=1024,t=1,p=64$" + salt + "$" + key,
		"$argon2id$v=19$m=1024,t=0,p=1$" + salt + "$" + key,
		"$argon2id$v=19$m=1024,t=1,p=1$" + salt + "$",
		"$argon2id$v=19$m=1024,t=1,p=1$" + salt + "$" + b64([]byte("short")),
		"$argon2id$v=19$m=1024,t=1,p=1$" + salt + "$" + b64([]byte(strings.Repeat("k", 129))),
		"$argon2id$v=19$m=1024,t=1,p=1$" + b64([]byte("salt")) + "$" + key,
		"$argon2id$v=19$m=1024,t=1,p=1$$" + key,
	} {
		ok, err := fastArgon2.Matches("secret", hash)
		if err == nil || ok {
			t.Fatalf("expected error for %q, got ok=%v err=%v", hash, ok, err)
		}
	}
}

func TestArgon2VerifierAcceptsParamsWithinBounds(t *testing.T) {
	stronger := fastArgon2
	stronger.Iterations = 2
	hash, err := stronger.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if ok, err := fastArgon2.Matches("secret", hash); err != nil || !ok {
		t.Fatalf("expected match for doubled iterations, got ok=%v err=%v", ok, err)
	}
}

func TestDelegatingVerifier(t *testing.T) {
	v, err := NewDelegatingVerifier("bcrypt", map[string]CredentialVerifier{
		"bcrypt":   fastBcrypt,
		"argon2id": fastArgon2,
	})
	if err != nil {
		t.Fatalf("NewDelegatingVerifier: %v", err)
	}
	hash, err := v.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "{bcrypt}$2") {
		t.Fatalf("expected {bcrypt} prefix, got %q", hash)
	}
	if ok, err := v.Matches("secret", hash); err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	argonHash, err := fastArgon2.Hash("secret")
	if err != nil {
		t.Fatalf("argon2 Hash: %v", err)
	}
	if ok, err := v.Matches("secret", "{argon2id}"+argonHash); err != nil || !ok {
		t.Fatalf("expected argon2id match, got ok=%v err=%v", ok, err)
	}

	if _, err := v.Matches("secret", "{md5}abc"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := v.Matches("secret", strings.TrimPrefix(hash, "{bcrypt}")); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm for bare hash, got %v", err)
	}
}

func TestNewDelegatingVerifierRequiresDefault(t *testing.T) {
	_, err := NewDelegatingVerifier("scrypt", map[string]CredentialVerifier{"bcrypt": fastBcrypt})
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func TestDefaultVerifier(t *testing.T) {
	if _, err := DefaultVerifier("md5"); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	v, err := DefaultVerifier("bcrypt")
	if err != nil {
		t.Fatalf("DefaultVerifier: %v", err)
	}
	hash, err := v.Hash("secret")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "{bcrypt}") {
		t.Fatalf("expected {bcrypt} prefix, got %q", hash)
	}
	if ok, err := v.Matches("secret", hash); err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	legacy, err := fastArgon2.Hash("secret")
	if err != nil {
		t.Fatalf("argon2 Hash: %v", err)
	}
	if ok, err := v.Matches("secret", "{argon2id}"+legacy); err != nil || !ok {
		t.Fatalf("expected argon2id hash accepted, got ok=%v err=%v", ok, err)
	}
}
