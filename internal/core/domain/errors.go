package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes are part of the HTTP contract and are sent to clients verbatim.
type DomainError struct {
	Code    string // Error code (e.g., "CSRF_TOKEN_MISSING")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Error codes.
const (
	CodeInvalidInput       = "INVALID_INPUT"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeCSRFTokenMissing   = "CSRF_TOKEN_MISSING"
	CodeCSRFTokenInvalid   = "CSRF_TOKEN_INVALID"
	CodeCSRFTokenMalformed = "CSRF_TOKEN_MALFORMED"
	CodeCSRFTokenExpired   = "CSRF_TOKEN_EXPIRED"
	CodeRateLimited        = "RATE_LIMITED"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
	CodeUnavailable        = "SERVICE_UNAVAILABLE"
)

// ============================================================================
// CSRF Errors
// ============================================================================

var (
	// ErrCSRFTokenMissing indicates the request carried no token at all.
	ErrCSRFTokenMissing = NewDomainError(CodeCSRFTokenMissing, "CSRF token missing")

	// ErrCSRFTokenInvalid indicates the signature did not match.
	ErrCSRFTokenInvalid = NewDomainError(CodeCSRFTokenInvalid, "Invalid or expired CSRF token")

	// ErrCSRFTokenMalformed indicates the token does not have three
	// non-empty fields or its timestamp is not an integer.
	ErrCSRFTokenMalformed = NewDomainError(CodeCSRFTokenMalformed, "malformed CSRF token")

	// ErrCSRFTokenExpired indicates the token is older than the TTL.
	ErrCSRFTokenExpired = NewDomainError(CodeCSRFTokenExpired, "CSRF token expired")
)

// ============================================================================
// Request Errors
// ============================================================================

var (
	// ErrInvalidInput indicates a malformed body or an unacceptable message.
	ErrInvalidInput = NewDomainError(CodeInvalidInput, "invalid input")

	// ErrMethodNotAllowed indicates the route does not accept the method.
	ErrMethodNotAllowed = NewDomainError(CodeMethodNotAllowed, "Method not allowed")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError(CodeRateLimited, "Too many requests, please try again later.")
)

// ============================================================================
// System Errors
// ============================================================================

var (
	// ErrInternal indicates an internal server error.
	ErrInternal = NewDomainError(CodeInternal, "internal server error")

	// ErrUpstream indicates a chat collaborator (model, speech, storage) failed.
	ErrUpstream = NewDomainError(CodeUpstream, "Error processing chat request")

	// ErrUnavailable indicates a required collaborator is not configured.
	ErrUnavailable = NewDomainError(CodeUnavailable, "service unavailable")
)

// PublicCSRFError collapses the internal CSRF failure reasons into the two
// codes clients are allowed to see.
func PublicCSRFError(err error) *DomainError {
	if errors.Is(err, ErrCSRFTokenMissing) {
		return ErrCSRFTokenMissing
	}
	return ErrCSRFTokenInvalid
}
