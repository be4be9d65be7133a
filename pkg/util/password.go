package util

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored credentials.
const BcryptCost = 10

// HashPassword hashes a plain text password with a random salt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword reports whether password matches hashedPassword.
// A malformed hash never matches.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

const (
	MinPasswordLength = 8
	MaxPasswordLength = 16
	passwordSpecials  = "!@#$%^&*"
)

// ValidPassword checks the password policy: 8-16 characters drawn from
// letters, digits and !@#$%^&*, with at least one uppercase letter and one
// special character.
func ValidPassword(password string) bool {
	if len(password) < MinPasswordLength || len(password) > MaxPasswordLength {
		return false
	}

	var hasUpper, hasSpecial bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasUpper && hasSpecial
}
