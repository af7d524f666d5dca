package services

import (
	"context"
	"math"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
)

// AttendanceService records private lessons.
type AttendanceService interface {
	// MarkAttendance credits a lesson on date (today when zero). Backdating is
	// allowed and a repeated date is counted again.
	MarkAttendance(ctx context.Context, username string, date models.Date, grade *float64) (*models.AttendanceResult, error)
}

type attendanceService struct {
	stats StatsService
	clock clock.Clock
}

// NewAttendanceService creates a new AttendanceService
func NewAttendanceService(stats StatsService, clk clock.Clock) AttendanceService {
	return &attendanceService{stats: stats, clock: clk}
}

func (s *attendanceService) MarkAttendance(ctx context.Context, username string, date models.Date, grade *float64) (*models.AttendanceResult, error) {
	log := logger.FromContext(ctx).WithField("student", username)

	if grade != nil && (math.IsNaN(*grade) || math.IsInf(*grade, 0)) {
		return nil, errors.NewValidationError("grade", "must be a finite number")
	}
	if date.IsZero() {
		date = s.clock.Today()
	}

	policy := s.stats.Policy()
	var result models.AttendanceResult
	_, err := s.stats.Update(ctx, username, func(st *models.StudentStats) error {
		result = policy.ApplyAttendance(st, date, grade, s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("attendance recorded: date=%s xp=%d bonus=%t total=%d", date, result.XPAwarded, result.BonusAwarded, result.TotalXP)
	return &result, nil
}
