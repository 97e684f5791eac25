// Package config provides server configuration for cardchat.
//
// This package defines the server configuration structure and validation:
//
//   - spec.go: ServerConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Business validation (secret strength, store selection)
//   - sanitize.go: Log sanitization (hide sensitive values)
//
// Configuration is loaded via internal/infra/confloader and supports
// multiple sources: files, environment variables, and flags.
//
// Keys never contain underscores because environment variables are mapped
// onto keys by replacing "_" with ".".
package config
