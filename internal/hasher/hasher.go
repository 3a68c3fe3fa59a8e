// Package hasher wraps bcrypt password hashing. The digest it produces is
// self-describing (salt and cost are embedded), so verification needs no
// extra state, and comparison is bcrypt's own constant-time check.
package hasher

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies passwords with a fixed work factor.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Costs outside the
// range bcrypt supports are replaced with bcrypt.DefaultCost.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash derives a salted digest from the plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether the plaintext password matches the stored digest.
// This is the only way passwords are ever compared.
func (h *Hasher) Verify(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
