package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
)

type createStudentRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

type practiceRequest struct {
	ExerciseID string `json:"exercise_id"`
}

type attendanceRequest struct {
	Date  models.Date `json:"date"`
	Grade *float64    `json:"grade"`
}

// studentResponse is the stored record plus the XP bounds of its level.
type studentResponse struct {
	*models.StudentStats
	LevelFloorXP int `json:"level_floor_xp"`
	NextLevelXP  int `json:"next_level_xp"`
}

func (s *Server) studentView(stats *models.StudentStats) studentResponse {
	floor := s.Policy.XPForLevel(stats.Level.Current)
	return studentResponse{
		StudentStats: stats,
		LevelFloorXP: floor,
		NextLevelXP:  floor + s.Policy.RequiredXPForLevel(stats.Level.Current),
	}
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	names, err := s.StudentService.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"students": names})
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	stats, err := s.StudentService.Create(r.Context(), req.Username, req.DisplayName, req.Avatar)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, s.studentView(stats))
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	stats, err := s.StatsService.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.studentView(stats))
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.StudentService.Delete(r.Context(), chi.URLParam(r, "username")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePractice(w http.ResponseWriter, r *http.Request) {
	var req practiceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.PracticeService.CompleteExercise(r.Context(), chi.URLParam(r, "username"), req.ExerciseID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	res, err := s.AttendanceService.MarkAttendance(r.Context(), chi.URLParam(r, "username"), req.Date, req.Grade)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	res, err := s.StreakService.CheckIn(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	if !res.Advanced {
		logger.FromContext(r.Context()).Debug("check-in was a no-op")
	}
	writeJSON(w, r, http.StatusOK, res)
}
