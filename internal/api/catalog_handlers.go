package api

import (
	"net/http"

	"github.com/vytor/drumdungeon/internal/catalog"
	"github.com/vytor/drumdungeon/internal/models"
)

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"tiers": catalog.Tiers()})
}

func (s *Server) handleMedals(w http.ResponseWriter, r *http.Request) {
	thresholds := s.Policy.Medals()
	medals := make([]models.Medal, 0, len(thresholds))
	for _, t := range thresholds {
		medals = append(medals, models.Medal{ID: t.Medal, Label: t.Label})
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"medals": medals})
}
