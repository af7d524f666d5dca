package services

import (
	"context"
	"strings"

	"github.com/vytor/drumdungeon/internal/catalog"
	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
)

// PracticeService records completed pad exercises.
type PracticeService interface {
	CompleteExercise(ctx context.Context, username, exerciseID string) (*models.PracticeResult, error)
}

type practiceService struct {
	stats StatsService
	clock clock.Clock
}

// NewPracticeService creates a new PracticeService
func NewPracticeService(stats StatsService, clk clock.Clock) PracticeService {
	return &practiceService{stats: stats, clock: clk}
}

func (s *practiceService) CompleteExercise(ctx context.Context, username, exerciseID string) (*models.PracticeResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"student":  username,
		"exercise": exerciseID,
	})

	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, errors.NewValidationError("exercise_id", "cannot be empty")
	}

	policy := s.stats.Policy()
	reward := catalog.Reward(exerciseID, policy.DefaultExerciseXP)
	if _, ok := catalog.Lookup(exerciseID); !ok {
		log.Debug("exercise not in catalog, using default reward %d", reward)
	}

	var result models.PracticeResult
	_, err := s.stats.Update(ctx, username, func(st *models.StudentStats) error {
		result = policy.ApplyPractice(st, exerciseID, reward, s.clock.Today(), s.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("practice recorded: xp=%d total=%d streak=%d", result.XPAwarded, result.TotalXP, result.Streak)
	return &result, nil
}
