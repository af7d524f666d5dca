package api

import (
	"net/http"

	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
)

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		handleError(w, r, err)
		return
	}

	board, err := s.LeaderboardService.Top(r.Context(), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, board)
}

func (s *Server) handleRebuildLeaderboard(w http.ResponseWriter, r *http.Request) {
	if err := s.JobQueue.EnqueueLeaderboard(); err != nil {
		handleError(w, r, errors.NewInternalError(err))
		return
	}
	logger.FromContext(r.Context()).Info("leaderboard regeneration queued")
	writeJSON(w, r, http.StatusAccepted, map[string]string{"status": "queued"})
}
