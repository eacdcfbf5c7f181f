package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// TokenBytes is the entropy of a session token.
const TokenBytes = 32

// GenerateSessionToken returns a random hex encoded session token.
func GenerateSessionToken() (string, error) {
	b := make([]byte, TokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
