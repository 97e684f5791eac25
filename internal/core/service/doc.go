// Package service provides domain services for the chat backend.
//
// Domain services contain pure business logic and orchestrate operations
// on domain models. They define interfaces for storage and upstream
// dependencies, allowing for dependency injection and testability.
//
// This package contains:
//
//   - CSRFService: stateless token issuance and validation
//   - RateLimiter: fixed-window limiting over a pluggable CounterStore
//   - ChatService: profile-grounded replies with optional speech
//
// Services are safe for concurrent use once constructed.
package service
