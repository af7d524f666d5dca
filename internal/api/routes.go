package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const requestTimeout = 30 * time.Second

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Group(func(r chi.Router) {
		r.Use(timeoutMiddleware(requestTimeout))

		r.Get("/exercises", s.handleExercises)
		r.Get("/medals", s.handleMedals)

		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/leaderboard/rebuild", s.handleRebuildLeaderboard)

		r.Route("/students", func(r chi.Router) {
			r.Get("/", s.handleListStudents)
			r.Post("/", s.handleCreateStudent)
			r.Route("/{username}", func(r chi.Router) {
				r.Get("/", s.handleGetStudent)
				r.Delete("/", s.handleDeleteStudent)
				r.Post("/practice", s.handlePractice)
				r.Post("/attendance", s.handleAttendance)
				r.Post("/checkin", s.handleCheckIn)
				r.Post("/performance", s.handleLogPerformance)
				r.Get("/performance", s.handlePerformanceSummary)
			})
		})

		r.Post("/admin/reconcile", s.handleReconcileAll)
		r.Post("/admin/reconcile/{username}", s.handleReconcileStudent)
	})
	return r
}
