package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteError writes a domain error using its public message and code.
func WriteError(w http.ResponseWriter, status int, err *domain.DomainError) {
	WriteJSON(w, status, ErrorResponse{
		Error: PublicMessage(err),
		Code:  err.Code,
	})
}

// WriteMethodNotAllowed writes a 405 advertising the accepted method.
func WriteMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	WriteJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error: domain.ErrMethodNotAllowed.Message,
	})
}

// WriteServiceError maps an error returned by a service to a response.
// Anything that is not a DomainError becomes a 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		de = domain.ErrInternal
	}
	WriteError(w, StatusForCode(de.Code), de)
}

// PublicMessage returns the text clients may see for err. Input errors
// carry a user-facing detail; every other code uses the fixed message.
func PublicMessage(err *domain.DomainError) string {
	if err.Code == domain.CodeInvalidInput && err.Details != "" {
		return err.Details
	}
	return err.Message
}

// StatusForCode maps error codes to HTTP status codes.
func StatusForCode(code string) int {
	switch code {
	case domain.CodeInvalidInput:
		return http.StatusBadRequest
	case domain.CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case domain.CodeCSRFTokenMissing, domain.CodeCSRFTokenInvalid,
		domain.CodeCSRFTokenMalformed, domain.CodeCSRFTokenExpired:
		return http.StatusForbidden
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	case domain.CodeUpstream:
		return http.StatusBadGateway
	case domain.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
