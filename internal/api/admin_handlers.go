package api

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/services"
)

func (s *Server) handleReconcileAll(w http.ResponseWriter, r *http.Request) {
	if err := s.JobQueue.EnqueueReconcileAll(); err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	logger.FromContext(r.Context()).Info("batch reconcile queued")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (s *Server) handleReconcileStudent(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if r.URL.Query().Get("async") == "true" {
		if err := s.JobQueue.EnqueueReconcile(username); err != nil {
			handleError(w, r, errors.NewInternalError(err))
			return
		}
		logger.FromContext(r.Context()).WithField("student", username).Info("reconcile queued")
		writeJSON(w, r, http.StatusAccepted, map[string]string{"student": username, "status": "queued"})
		return
	}

	changed, err := s.ReconcileService.ReconcileStudent(r.Context(), username)
	mirrorOK := true
	if err != nil {
		if !stderrors.Is(err, services.ErrMirrorSync) {
			handleError(w, r, err)
			return
		}
		// The file was reconciled; only the mirror write failed.
		logger.FromContext(r.Context()).Warn("reconcile mirror step failed: %v", err)
		mirrorOK = false
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"student":   username,
		"changed":   changed,
		"mirror_ok": mirrorOK,
	})
}
