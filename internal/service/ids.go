package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const shareTokenBytes = 32

var randRead = rand.Read

// newShareToken returns shareTokenBytes of CSPRNG output as lowercase hex.
func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := randRead(buf); err != nil {
		return "", fmt.Errorf("read random token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
