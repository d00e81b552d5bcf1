// Package auth holds the credential hashing used by the account actions.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const saltLength = 16

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword returns a self-contained "salt$hash" hex string.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := deriveKey([]byte(password), salt)
	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches the stored hash. The
// comparison is constant-time.
func VerifyPassword(stored, password string) bool {
	salt, key, ok := decode(stored)
	if !ok {
		return false
	}
	derived := deriveKey([]byte(password), salt)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

func decode(stored string) (salt, key []byte, ok bool) {
	parts := strings.SplitN(stored, "$", 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	salt, err := hex.DecodeString(parts[0])
	if err != nil || len(salt) != saltLength {
		return nil, nil, false
	}
	key, err = hex.DecodeString(parts[1])
	if err != nil || len(key) == 0 {
		return nil, nil, false
	}
	return salt, key, true
}

// SecureCompare is a constant-time string equality check, used for wallet
// keys and other short shared secrets.
func SecureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

var errWeakPassword = errors.New("weak password")

// CheckPasswordStrength enforces the registration policy: at least 8
// characters with an upper-case letter, a lower-case letter and a digit.
func CheckPasswordStrength(password string) error {
	if len(password) < 8 {
		return errWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return errWeakPassword
	}
	return nil
}
