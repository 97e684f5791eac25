// Package logger provides structured logging for the chat backend.
//
// It wraps log/slog:
//
//   - logger.go: handler setup, dynamic level, optional rotating file output
//   - context.go: request ID and client IP propagation
//   - redact.go: masking of CSRF tokens and secret-looking attributes
package logger
