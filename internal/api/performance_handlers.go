package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/drumdungeon/internal/errors"
)

const bestWeekDays = 7

type logPerformanceRequest struct {
	Exercise string `json:"exercise"`
	StartBPM int    `json:"start_bpm"`
	EndBPM   int    `json:"end_bpm"`
}

func (s *Server) handleLogPerformance(w http.ResponseWriter, r *http.Request) {
	var req logPerformanceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	entry, err := s.PerformanceService.Log(r.Context(), chi.URLParam(r, "username"), req.Exercise, req.StartBPM, req.EndBPM)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, entry)
}

func (s *Server) handlePerformanceSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	username := chi.URLParam(r, "username")

	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "average":
		avg, err := s.PerformanceService.AverageIncrease(ctx, username)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"mode": "average", "exercises": avg})

	case "best-week":
		days, err := queryInt(r, "days", bestWeekDays)
		if err != nil {
			handleError(w, r, err)
			return
		}
		best, err := s.PerformanceService.BestSessionSince(ctx, username, days)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"mode": mode, "days": days, "best": best})

	case "difficulty":
		usage, err := s.PerformanceService.DifficultyUsage(ctx, username)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"mode": mode, "usage": usage})

	default:
		handleError(w, r, errors.NewValidationError("mode", "must be one of average, best-week, difficulty"))
	}
}
