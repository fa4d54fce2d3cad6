package oauth

import (
	"crypto/rand"
	"encoding/hex"
)

const maxCodeLength = 64

// newCode returns a random hex string of length n
func newCode(n int) (string, error) {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:n], nil
}
