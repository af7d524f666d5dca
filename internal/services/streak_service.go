package services

import (
	"context"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
)

// StreakService runs the daily streak check-in.
type StreakService interface {
	CheckIn(ctx context.Context, username string) (*models.CheckInResult, error)
}

type streakService struct {
	stats StatsService
	clock clock.Clock
}

// NewStreakService creates a new StreakService
func NewStreakService(stats StatsService, clk clock.Clock) StreakService {
	return &streakService{stats: stats, clock: clk}
}

func (s *streakService) CheckIn(ctx context.Context, username string) (*models.CheckInResult, error) {
	log := logger.FromContext(ctx).WithField("student", username)

	policy := s.stats.Policy()
	var result models.CheckInResult
	_, err := s.stats.Update(ctx, username, func(st *models.StudentStats) error {
		result = policy.CheckIn(st, s.clock.Today(), s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Advanced {
		log.Info("streak advanced: current=%d bonus=%d", result.Streak, result.Bonus)
	} else {
		log.Debug("already checked in today: current=%d", result.Streak)
	}
	return &result, nil
}
