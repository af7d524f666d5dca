package api

import (
	"context"
	"net/http"
	"time"

	"github.com/vytor/drumdungeon/internal/logger"
)

const readyTimeout = 2 * time.Second

// handleHealth is the liveness probe; it always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady is the readiness probe. The relational mirror is optional, so a
// failing mirror degrades the report without failing the probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	mirror := "disabled"
	if s.Mirror != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.Mirror.Ping(ctx); err != nil {
			log.Warn("readiness check - relational mirror: %v", err)
			mirror = "unavailable"
		} else {
			mirror = "ok"
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"status": "ready",
		"mirror": mirror,
	})
}
