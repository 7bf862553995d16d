package auth

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Alphabet for generated portal passwords. Visually ambiguous characters
// (0/O, 1/I/l) are excluded because credentials are read off printed letters.
const portalAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// GeneratePortalPassword produces a random password for applicant portal
// credentials issued at submission time.
func GeneratePortalPassword(length int) (string, error) {
	if length <= 0 {
		length = 10
	}
	max := big.NewInt(int64(len(portalAlphabet)))
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = portalAlphabet[n.Int64()]
	}
	return string(out), nil
}
