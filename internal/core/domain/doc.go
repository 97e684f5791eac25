// Package domain defines the core domain models for the chat backend.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - CSRFToken: the signed, stateless anti-forgery token
//   - Counter and Decision: fixed-window rate limit state and outcomes
//   - ChatRequest, ChatReply and Prompt: the chat exchange
//   - Errors: domain error definitions with stable wire codes
package domain
