package handler

import (
	"net/http"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// HandleCSRFToken handles GET /api/csrf-token.
func (h *Handler) HandleCSRFToken(w http.ResponseWriter, r *http.Request) {
	log := logger.L(r.Context())

	issued, err := h.tokens.Issue()
	if err != nil {
		log.Error("failed to generate CSRF token", "error", err)
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error: "Failed to generate CSRF token",
		})
		return
	}

	h.metrics.TokensIssued.Inc()
	log.Info("CSRF token issued", "expires_in", issued.ExpiresIn)

	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, http.StatusOK, issued)
}
