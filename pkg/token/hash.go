package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// SignatureLength is the decoded length of a signature in bytes.
const SignatureLength = sha256.Size

// Sign computes the hex-encoded HMAC-SHA256 of payload keyed with secret.
func Sign(secret []byte, payload string) string {
	return hex.EncodeToString(SignBytes(secret, payload))
}

// SignBytes computes the raw HMAC-SHA256 of payload keyed with secret.
func SignBytes(secret []byte, payload string) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(payload))
	return mac.Sum(nil)
}

// Verify reports whether signature is the hex-encoded HMAC of payload.
//
// Only the lowercase form that Sign produces is accepted. The comparison is
// constant time over the encoded text; a signature of the wrong length is
// rejected without comparing.
func Verify(secret []byte, payload, signature string) bool {
	if len(signature) != hex.EncodedLen(SignatureLength) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(Sign(secret, payload)), []byte(signature)) == 1
}

// Hash computes the hex-encoded SHA-256 of data.
func Hash(data string) string {
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}
