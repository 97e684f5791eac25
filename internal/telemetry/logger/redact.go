package logger

import (
	"log/slog"
	"regexp"
	"strings"
)

// csrfTokenPattern matches "{millis}:{hex nonce}:{hex signature}".
var csrfTokenPattern = regexp.MustCompile(`^\d{1,19}:[0-9a-fA-F]{4,}:[0-9a-fA-F]+$`)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"apikey",
	"api_key",
	"credential",
	"authorization",
	"bearer",
}

// redactedValue is the placeholder for redacted sensitive data.
const redactedValue = "***REDACTED***"

// redactSensitive masks CSRF tokens wherever they appear and fully
// redacts non-empty string values under sensitive-looking keys.
func redactSensitive(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindString {
		strVal := a.Value.String()
		if csrfTokenPattern.MatchString(strVal) {
			return slog.String(a.Key, maskCSRFToken(strVal))
		}
		if strVal != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	}

	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	}

	return a
}

// maskCSRFToken keeps the timestamp and a nonce hint and hides the signature.
// Format: 1700000000000:0a1b...:***
func maskCSRFToken(value string) string {
	parts := strings.SplitN(value, ":", 3)
	return parts[0] + ":" + parts[1][:4] + "...:***"
}

// RedactString manually redacts a string value.
// Use this when you need to redact a value before logging.
func RedactString(value string) string {
	if csrfTokenPattern.MatchString(value) {
		return maskCSRFToken(value)
	}
	return value
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
