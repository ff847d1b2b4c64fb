package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"ledger/internal/core"
)

const MinPasswordLength = 6

var ErrInvalidCredentials = errors.New("invalid email or password")

// ValidatePassword enforces the minimum length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return core.ErrPasswordTooWeak
	}
	return nil
}

// HashPassword validates and bcrypt-hashes a password.
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword returns ErrInvalidCredentials when password does not match hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
