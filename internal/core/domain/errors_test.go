package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("TEST_ONE", "test message"),
			expected: "[TEST_ONE] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("TEST_TWO", "test message").WithDetails("extra info"),
			expected: "[TEST_TWO] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("TEST_ONE", "message 1")
	err2 := NewDomainError("TEST_ONE", "message 2") // Same code, different message
	err3 := NewDomainError("TEST_TWO", "message 1") // Different code

	// Same code should match
	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}

	// Different code should not match
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}

	// Should not match non-DomainError
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("TEST_ONE", "wrapper").WithCause(cause)

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Without cause
	errNoCause := NewDomainError("TEST_ONE", "no cause")
	if errors.Unwrap(errNoCause) != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestDomainError_WithDetails(t *testing.T) {
	original := NewDomainError("TEST_ONE", "original message")
	withDetails := original.WithDetails("additional details")

	// Check original is unchanged
	if original.Details != "" {
		t.Error("WithDetails should not modify original error")
	}

	// Check new error has details
	if withDetails.Details != "additional details" {
		t.Errorf("Details = %q, want %q", withDetails.Details, "additional details")
	}

	// Check code and message are preserved
	if withDetails.Code != original.Code {
		t.Errorf("Code = %q, want %q", withDetails.Code, original.Code)
	}
	if withDetails.Message != original.Message {
		t.Errorf("Message = %q, want %q", withDetails.Message, original.Message)
	}
}

func TestDomainError_WithCause(t *testing.T) {
	original := NewDomainError("TEST_ONE", "original message")
	cause := fmt.Errorf("root cause")
	withCause := original.WithCause(cause)

	// Check original is unchanged
	if original.Cause != nil {
		t.Error("WithCause should not modify original error")
	}

	// Check new error has cause
	if withCause.Cause != cause {
		t.Errorf("Cause = %v, want %v", withCause.Cause, cause)
	}

	// Check code and message are preserved
	if withCause.Code != original.Code {
		t.Errorf("Code = %q, want %q", withCause.Code, original.Code)
	}
}

func TestIsDomainError(t *testing.T) {
	if !IsDomainError(ErrCSRFTokenMissing, CodeCSRFTokenMissing) {
		t.Error("IsDomainError should return true for matching code")
	}
	if IsDomainError(ErrCSRFTokenMissing, CodeCSRFTokenInvalid) {
		t.Error("IsDomainError should return false for non-matching code")
	}
	if IsDomainError(fmt.Errorf("regular error"), "") {
		t.Error("IsDomainError should return false for non-DomainError")
	}

	wrapped := fmt.Errorf("wrapped: %w", ErrRateLimited)
	if !IsDomainError(wrapped, CodeRateLimited) {
		t.Error("IsDomainError should work with wrapped errors")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"domain error", ErrInvalidInput, CodeInvalidInput},
		{"wrapped domain error", fmt.Errorf("wrapped: %w", ErrCSRFTokenExpired), CodeCSRFTokenExpired},
		{"regular error", fmt.Errorf("regular error"), ""},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.expected {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPublicCSRFError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"missing", ErrCSRFTokenMissing, CodeCSRFTokenMissing},
		{"malformed", ErrCSRFTokenMalformed.WithDetails("empty field"), CodeCSRFTokenInvalid},
		{"expired", ErrCSRFTokenExpired, CodeCSRFTokenInvalid},
		{"bad signature", ErrCSRFTokenInvalid, CodeCSRFTokenInvalid},
		{"unknown", errors.New("boom"), CodeCSRFTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PublicCSRFError(tt.err).Code; got != tt.want {
				t.Errorf("PublicCSRFError() code = %q, want %q", got, tt.want)
			}
		})
	}
}
