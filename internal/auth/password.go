package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier hashes secrets one way and compares plaintext against stored hashes.
type CredentialVerifier interface {
	Matches(plaintext, hash string) (bool, error)
	Hash(plaintext string) (string, error)
}

// HashFunc hashes a plaintext secret.
type HashFunc func(plaintext string) (string, error)

var errEmptyPassword = errors.New("password is empty")

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

var _ CredentialVerifier = BcryptVerifier{}

func (v BcryptVerifier) Hash(plaintext string) (string, error) {
	if len(plaintext) == 0 {
		return "", errEmptyPassword
	}
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (v BcryptVerifier) Matches(plaintext, hash string) (bool, error) {
	if hash == "" {
		return false, errors.New("password hash is empty")
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Argon2Verifier stores argon2id hashes in the $argon2id$v=19$m=..,t=..,p=..$salt$key format.
type Argon2Verifier struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

var _ CredentialVerifier = Argon2Verifier{}

// DefaultArgon2 matches the parameters used for new hashes.
var DefaultArgon2 = Argon2Verifier{
	Memory:      64 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

func (v Argon2Verifier) Hash(plaintext string) (string, error) {
	if len(plaintext) == 0 {
		return "", errEmptyPassword
	}
	salt := make([]byte, v.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(plaintext), salt, v.Iterations, v.Memory, v.Parallelism, v.KeyLength)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		v.Memory,
		v.Iterations,
		v.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (v Argon2Verifier) Matches(plaintext, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return false, errors.New("malformed argon2id hash")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return false, fmt.Errorf("unsupported argon2 version %q", parts[2])
	}
	var (
		memory, iterations uint32
		parallelism        uint8
	)
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("parse argon2 params: %w", err)
	}
	if err := v.withinBounds(memory, iterations, parallelism); err != nil {
		return false, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	if len(salt) < minArgon2SaltLength {
		return false, errors.New("argon2 salt too short")
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode key: %w", err)
	}
	if len(expected) < minArgon2KeyLength || len(expected) > maxArgon2KeyLength {
		return false, fmt.Errorf("argon2 key length %d out of bounds", len(expected))
	}
	key := argon2.IDKey([]byte(plaintext), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

const (
	minArgon2SaltLength = 8
	minArgon2KeyLength  = 16
	maxArgon2KeyLength  = 128
)

// withinBounds refuses stored params far beyond our own so a crafted hash cannot exhaust memory or CPU.
func (v Argon2Verifier) withinBounds(memory, iterations uint32, parallelism uint8) error {
	if memory == 0 || iterations == 0 || parallelism == 0 {
		return errors.New("invalid argon2 params")
	}
	if v.Memory > 0 && uint64(memory) > 2*uint64(v.Memory) {
		return errors.New("argon2 memory parameter out of bounds")
	}
	if v.Iterations > 0 && uint64(iterations) > 2*uint64(v.Iterations) {
		return errors.New("argon2 iteration parameter out of bounds")
	}
	if v.Parallelism > 0 && int(parallelism) > 2*int(v.Parallelism) {
		return errors.New("argon2 parallelism parameter out of bounds")
	}
	return nil
}

// DelegatingVerifier prefixes hashes with an {id} naming the scheme and dispatches on it.
type DelegatingVerifier struct {
	defaultID string
	schemes   map[string]CredentialVerifier
}

var _ CredentialVerifier = (*DelegatingVerifier)(nil)

// NewDelegatingVerifier hashes with schemes[defaultID] and matches any registered scheme.
func NewDelegatingVerifier(defaultID string, schemes map[string]CredentialVerifier) (*DelegatingVerifier, error) {
	if _, ok := schemes[defaultID]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, defaultID)
	}
	copied := make(map[string]CredentialVerifier, len(schemes))
	for id, v := range schemes {
		copied[id] = v
	}
	return &DelegatingVerifier{defaultID: defaultID, schemes: copied}, nil
}

// DefaultVerifier hashes new secrets with the named scheme ("bcrypt" or "argon2id") and accepts
// hashes written by either.
func DefaultVerifier(scheme string) (*DelegatingVerifier, error) {
	return NewDelegatingVerifier(scheme, map[string]CredentialVerifier{
		"bcrypt":   BcryptVerifier{},
		"argon2id": DefaultArgon2,
	})
}

func (d *DelegatingVerifier) Hash(plaintext string) (string, error) {
	hash, err := d.schemes[d.defaultID].Hash(plaintext)
	if err != nil {
		return "", err
	}
	return "{" + d.defaultID + "}" + hash, nil
}

func (d *DelegatingVerifier) Matches(plaintext, hash string) (bool, error) {
	id, rest, ok := splitSchemeID(hash)
	if !ok {
		return false, fmt.Errorf("%w: missing {id} prefix", ErrUnknownAlgorithm)
	}
	v, found := d.schemes[id]
	if !found {
		return false, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
	}
	return v.Matches(plaintext, rest)
}

func splitSchemeID(hash string) (id, rest string, ok bool) {
	if !strings.HasPrefix(hash, "{") {
		return "", "", false
	}
	end := strings.IndexByte(hash, '}')
	if end < 0 {
		return "", "", false
	}
	return hash[1:end], hash[end+1:], true
}
