package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"
)

// ErrSecretTooLong is returned when a secret exceeds bcrypt's 72-byte input limit.
var ErrSecretTooLong = errors.New("secret must be at most 72 bytes")

// Hasher produces and verifies salted one-way hashes of account secrets.
type Hasher interface {
	Hash(secret string) (string, error)
	Compare(hash, secret string) bool
}

// BcryptHasher implements Hasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, or bcrypt.DefaultCost when cost
// is outside bcrypt's accepted range.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(secret string) (string, error) {
	if len(secret) > 72 {
		return "", ErrSecretTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, secret string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// NormalizeAnswer case-folds a security answer so that its hash can be
// compared case-insensitively. Unicode folding maps variants such as the
// long s and the Kelvin sign onto their plain letters.
func NormalizeAnswer(answer string) string {
	return cases.Fold().String(answer)
}
