package handler

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const readyTimeout = 2 * time.Second

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Time:    h.now().UTC().Format(time.RFC3339),
		Version: h.version,
	})
}

// HandleReady handles GET /ready. It runs every readiness check and
// answers 503 when any of them fails.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.ready))
	for name := range h.ready {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	resp := HealthResponse{
		Status:  "ready",
		Version: h.version,
	}
	if len(names) > 0 {
		resp.Checks = make(map[string]string, len(names))
	}
	for _, name := range names {
		if err := h.ready[name](ctx); err != nil {
			h.logger.Warn("readiness check failed", "check", name, "error", err)
			resp.Checks[name] = "fail"
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	resp.Time = h.now().UTC().Format(time.RFC3339)

	WriteJSON(w, status, resp)
}

// HandleRoot handles GET /.
func (h *Handler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Welcome to the Chat API"))
}

// HandleNotFound answers every unknown path.
func (h *Handler) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not Found"})
}
