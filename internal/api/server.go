package api

import (
	"context"

	"github.com/vytor/drumdungeon/internal/gamification"
	"github.com/vytor/drumdungeon/internal/jobs"
	"github.com/vytor/drumdungeon/internal/services"
)

// Pinger reports whether an optional backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	StatsService       services.StatsService
	StudentService     services.StudentService
	PracticeService    services.PracticeService
	AttendanceService  services.AttendanceService
	StreakService      services.StreakService
	PerformanceService services.PerformanceService
	LeaderboardService services.LeaderboardService
	ReconcileService   services.ReconcileService
	JobQueue           jobs.JobQueue
	Policy             gamification.Policy

	// Mirror is nil when the relational store is disabled.
	Mirror Pinger
}
