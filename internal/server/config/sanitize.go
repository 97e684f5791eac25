// Package config defines the server configuration structure.
package config

import "strings"

// Sanitize returns a copy of the config with sensitive fields masked.
//
// This is used for logging configuration without exposing secrets.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	// Create a shallow copy
	sanitized := *cfg
	sanitized.Server.HTTP.CORSOrigins = append([]string(nil), cfg.Server.HTTP.CORSOrigins...)

	// Mask sensitive fields
	sanitized.Security.CSRF.Secret = maskSecret(sanitized.Security.CSRF.Secret)
	sanitized.RateLimit.Redis.Password = maskSecret(sanitized.RateLimit.Redis.Password)
	sanitized.Chat.OpenAI.APIKey = maskSecret(sanitized.Chat.OpenAI.APIKey)
	sanitized.Chat.Speech.APIKey = maskSecret(sanitized.Chat.Speech.APIKey)
	sanitized.AWS.SecretAccessKey = maskSecret(sanitized.AWS.SecretAccessKey)

	return &sanitized
}

// maskSecret masks a secret value for safe logging. Empty stays empty.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
