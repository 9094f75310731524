package accounts

import (
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor for password hashes
const bcryptCost = 12

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password against
// the stored hash. Any failure, including a malformed hash, surfaces as
// ErrMismatchedHashAndPassword so callers cannot distinguish the cases.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
