package redlock

import (
	"crypto/rand"
	"encoding/hex"
)

// tokenBytes is the length, in raw bytes, of a lease token.
const tokenBytes = 20

// NewToken returns a fresh lease token: 20 cryptographically random bytes,
// hex-encoded. A new token is generated per acquisition attempt and is
// never reused.
func NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
