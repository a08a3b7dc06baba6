package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateActionToken mints the secret embedded in email approve/reject links.
// 32 random bytes, hex encoded.
func GenerateActionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
