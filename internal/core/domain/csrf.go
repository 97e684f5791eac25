package domain

import (
	"strconv"
	"strings"
	"time"
)

// CSRFSeparator separates the fields of a CSRF token.
const CSRFSeparator = ":"

// DefaultCSRFTTL is how long an issued token stays valid.
const DefaultCSRFTTL = 15 * time.Minute

// CSRFToken is a parsed anti-forgery token of the form
// "{issuedAtMillis}:{nonce}:{signature}".
type CSRFToken struct {
	IssuedAt  int64  // milliseconds since the Unix epoch
	Nonce     string // hex-encoded random bytes
	Signature string // hex-encoded HMAC-SHA256 over Payload()
}

// Payload returns the signed portion of the token.
func (t CSRFToken) Payload() string {
	return SignedPayload(t.IssuedAt, t.Nonce)
}

// String renders the token in wire form.
func (t CSRFToken) String() string {
	return t.Payload() + CSRFSeparator + t.Signature
}

// IssuedTime returns IssuedAt as a time.Time.
func (t CSRFToken) IssuedTime() time.Time {
	return time.UnixMilli(t.IssuedAt)
}

// Age returns how long ago the token was issued relative to now.
func (t CSRFToken) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-t.IssuedAt) * time.Millisecond
}

// Expired reports whether the token is older than ttl at now.
// A token exactly ttl old is still fresh.
func (t CSRFToken) Expired(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-t.IssuedAt > ttl.Milliseconds()
}

// SignedPayload builds the string covered by the signature.
func SignedPayload(issuedAt int64, nonce string) string {
	return strconv.FormatInt(issuedAt, 10) + CSRFSeparator + nonce
}

// ParseCSRFToken splits a wire-form token into its fields.
//
// It only checks structure: exactly three non-empty fields and a timestamp
// in canonical decimal form (digits only, no sign, no leading zero), so
// that Payload reproduces the signed text byte for byte. Freshness and
// authenticity are checked by the caller.
func ParseCSRFToken(raw string) (CSRFToken, error) {
	if raw == "" {
		return CSRFToken{}, ErrCSRFTokenMissing
	}
	parts := strings.Split(raw, CSRFSeparator)
	if len(parts) != 3 {
		return CSRFToken{}, ErrCSRFTokenMalformed.WithDetails("expected 3 fields, got " + strconv.Itoa(len(parts)))
	}
	for _, p := range parts {
		if p == "" {
			return CSRFToken{}, ErrCSRFTokenMalformed.WithDetails("empty field")
		}
	}
	if !canonicalDecimal(parts[0]) {
		return CSRFToken{}, ErrCSRFTokenMalformed.WithDetails("timestamp is not a canonical integer")
	}
	issuedAt, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return CSRFToken{}, ErrCSRFTokenMalformed.WithDetails("timestamp is not an integer")
	}
	return CSRFToken{
		IssuedAt:  issuedAt,
		Nonce:     parts[1],
		Signature: parts[2],
	}, nil
}

// IssuedToken is what the issuance endpoint hands back to the browser.
type IssuedToken struct {
	Token     string `json:"csrfToken"`
	ExpiresAt int64  `json:"expires"`   // milliseconds since epoch
	ExpiresIn int64  `json:"expiresIn"` // seconds
	IssuedAt  int64  `json:"issued"`    // milliseconds since epoch
}

// MaskCSRFToken masks a token for safe logging.
// Example: 1700000000000:0a1b...***
func MaskCSRFToken(raw string) string {
	parts := strings.Split(raw, CSRFSeparator)
	if len(parts) != 3 || len(parts[1]) < 4 {
		return "***REDACTED***"
	}
	return parts[0] + CSRFSeparator + parts[1][:4] + "..." + CSRFSeparator + "***"
}

func canonicalDecimal(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
