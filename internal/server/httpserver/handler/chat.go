package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/core/domain"
	"github.com/ShavonHarris-Dev/Digital-Business-Card/internal/telemetry/logger"
)

// HandleChat handles POST /api/chat. The CSRF guard has already run.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	log := logger.L(r.Context())

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, domain.ErrInvalidInput.WithDetails("request body too large"))
			return
		}
		WriteError(w, http.StatusBadRequest, domain.ErrInvalidInput.WithDetails("invalid request body"))
		return
	}

	start := h.now()
	reply, err := h.chat.Reply(r.Context(), &domain.ChatRequest{
		Message:  req.UserMessage,
		Language: req.Language,
		Audio:    req.Audio,
		ClientIP: logger.ClientIPFromContext(r.Context()),
	})
	if err != nil {
		if domain.IsDomainError(err, domain.CodeUpstream) {
			log.Error("chat request failed", "error", err, "elapsed", time.Since(start))
		} else if !domain.IsDomainError(err, domain.CodeInvalidInput) {
			log.Error("chat request failed", "error", err)
		}
		WriteServiceError(w, err)
		return
	}

	if reply.Cached {
		h.metrics.ChatCacheHits.Inc()
	}
	log.Debug("chat reply sent",
		"cached", reply.Cached,
		"audio", reply.AudioURL != "",
		"elapsed", time.Since(start),
	)

	WriteJSON(w, http.StatusOK, ChatResponse{
		Response:  reply.Text,
		Timestamp: reply.Timestamp.UTC().Format(time.RFC3339),
		AudioURL:  reply.AudioURL,
		Cached:    reply.Cached,
	})
}
