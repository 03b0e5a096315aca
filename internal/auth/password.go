package auth

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted bcrypt hash of the plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext matches the stored hash. Any
// internal failure (malformed hash included) collapses to "no match" so the
// caller never learns why verification failed.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RandomPassword returns a cryptographically random password. Used for
// accounts created via Google sign-in so their shape matches password-based
// accounts; the value is never exposed.
func RandomPassword() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy source.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
