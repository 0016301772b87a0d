package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is enforced when staff accounts are created.
const MinPasswordLength = 8

var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// dummyHash is compared against when the account does not exist, so an
// unknown email still costs a bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("venue-ops-dummy-password"), bcrypt.DefaultCost)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// BurnPasswordCheck performs a throwaway comparison.
func BurnPasswordCheck(plain string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
}
