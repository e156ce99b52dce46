package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies user passwords
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements Hasher with bcrypt at the library default cost
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher using bcrypt.DefaultCost
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt hash of password. The only input bcrypt rejects is
// a password beyond its 72-byte limit; request validation caps length before
// this runs, so callers treat an error as an infrastructure failure.
func (h *BcryptHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches the stored hash. Verification is a
// pure predicate: malformed or empty stored hashes are false, never an error.
func (h *BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

var _ Hasher = (*BcryptHasher)(nil)
