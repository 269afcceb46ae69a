package password

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinLength is the shortest accepted password
const MinLength = 6

const cost = 12

var (
	ErrTooShort = errors.New("password must be at least 6 characters long")
	ErrMismatch = errors.New("passwords do not match")
)

// Hash hashes password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// Verify compares password with hash. Accounts created through Google or
// magic links have no hash and never verify.
func Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckNew validates a new password and its confirmation
func CheckNew(password, confirmation string) error {
	if len(password) < MinLength {
		return ErrTooShort
	}
	if password != confirmation {
		return ErrMismatch
	}
	return nil
}
