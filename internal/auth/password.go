package auth

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is the work factor applied when hashing new secrets.
const bcryptCost = 12

// bcryptPrefix tags password material stored in bcrypt format
// ("$2a$", "$2b$", "$2y$" variants all share it).
const bcryptPrefix = "$2"

// HashPassword hashes a plaintext secret with bcrypt.
//
// All newly written password material goes through this function; plaintext
// is never stored for new or updated accounts.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks a supplied secret against stored password material.
//
// The stored format is sniffed by prefix: material starting with "$2" is
// compared with bcrypt, anything else is a legacy plaintext record compared
// for exact equality. Legacy acceptance exists only for records imported
// from the pre-migration deployment.
//
// A bcrypt failure that is not a clean mismatch (malformed hash, truncated
// record) degrades to the plaintext comparison rather than aborting the
// login flow. This fallback-on-error policy is deliberate and load-bearing.
//
// Pure function: no side effects.
func VerifyPassword(supplied, stored string) bool {
	if strings.HasPrefix(stored, bcryptPrefix) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied))
		if err == nil {
			return true
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false
		}
		// Malformed hash: fall through to the plaintext comparison.
	}
	return supplied == stored
}
