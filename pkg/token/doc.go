// Package token provides the random and keyed-hash primitives behind the
// CSRF token protocol.
//
// Nonce Format:
//
//   - 16 bytes from crypto/rand
//   - lowercase hex encoded (32 characters)
//
// Signature Format:
//
//   - HMAC-SHA256 over the signed payload, keyed with the process secret
//   - lowercase hex encoded (64 characters)
//
// Security:
//
//   - Uses crypto/rand for CSPRNG
//   - Signatures are compared over decoded bytes with crypto/subtle
//   - Malformed or wrong-length signatures are rejected before comparison
package token
