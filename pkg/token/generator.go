package token

import (
	"crypto/rand"
	"encoding/hex"
)

// NonceLength is the nonce length in bytes.
const NonceLength = 16

// Generate returns a hex-encoded nonce of NonceLength random bytes.
func Generate() (string, error) {
	return GenerateHex(NonceLength)
}

// GenerateHex returns length random bytes, hex encoded.
func GenerateHex(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
