package security

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPIN returns a bcrypt hash of the parent PIN
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	return string(hash), nil
}

// IsHashedPIN reports whether stored holds a bcrypt hash rather than a plain PIN
func IsHashedPIN(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

// CheckPIN compares pin with the stored value. Plain stored PINs (the
// factory default and older saves) still match; needsRehash tells the caller
// to replace them with a hash.
func CheckPIN(stored, pin string) (match bool, needsRehash bool) {
	if IsHashedPIN(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(pin)) == nil, false
	}

	match = subtle.ConstantTimeCompare([]byte(stored), []byte(pin)) == 1
	return match, match
}
