package service

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"go-user-auth/internal/model"
)

// bcryptPrefixes are the only stored hash formats Verify will compare against.
var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify compares plaintext against a stored bcrypt hash. A stored value in
// any other format, or a corrupt bcrypt hash, returns
// model.ErrPasswordResetRequired instead of a match result.
func (h *PasswordHasher) Verify(plaintext string, storedHash string) (bool, error) {
	if !IsSupportedHash(storedHash) {
		return false, model.ErrPasswordResetRequired
	}

	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, model.ErrPasswordResetRequired
	}
}

func IsSupportedHash(storedHash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(storedHash, prefix) {
			return true
		}
	}
	return false
}
