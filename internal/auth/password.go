package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/vbonduro/fieldtech/internal/validation"
)

const (
	MinPasswordLength = 8
	maxPasswordLength = 72
)

// HashPassword validates and bcrypt-hashes a plaintext password.
func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", validation.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if len(password) > maxPasswordLength {
		return "", validation.Invalid("password", fmt.Sprintf("must be at most %d bytes", maxPasswordLength))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
