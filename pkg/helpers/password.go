package helpers

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned by Hash when the plaintext exceeds bcrypt's input limit.
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// PasswordHasher hashes and verifies passwords with bcrypt at a fixed cost.
// Digests are self-describing: algorithm, cost and salt are embedded.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost for every new digest.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordHasher{cost: cost}, nil
}

// Cost returns the configured bcrypt cost.
func (h *PasswordHasher) Cost() int { return h.cost }

// Hash hashes the plain text password with a fresh random salt
func (h *PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(b), nil
}

// Verify compares a plain password with a stored digest. A malformed digest
// never matches.
func (h *PasswordHasher) Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
