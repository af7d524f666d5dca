package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/gamification"
	"github.com/vytor/drumdungeon/internal/jobs"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// StatsService loads, validates and persists student stats records.
type StatsService interface {
	// Load reads the record (file first, relational mirror as fallback) and
	// re-derives totals and level.
	Load(ctx context.Context, username string) (*models.StudentStats, error)
	// Get is Load plus streak decay, persisted when it changed anything.
	Get(ctx context.Context, username string) (*models.StudentStats, error)
	// Update runs fn on the loaded record under the student's lock and
	// persists the result. Nothing is written when fn fails.
	Update(ctx context.Context, username string, fn func(*models.StudentStats) error) (*models.StudentStats, error)
	// Save writes the file (fatal on failure) then mirrors best-effort.
	// Callers must hold the student's lock.
	Save(ctx context.Context, username string, stats *models.StudentStats) error
	Policy() gamification.Policy
	Locks() *StudentLocks
}

type statsService struct {
	store  repository.StatsStore
	mirror repository.MirrorRepository
	sync   SyncService
	policy gamification.Policy
	clock  clock.Clock
	locks  *StudentLocks
	queue  jobs.JobQueue
}

// NewStatsService creates a StatsService. mirror and queue may be nil.
func NewStatsService(
	store repository.StatsStore,
	mirror repository.MirrorRepository,
	sync SyncService,
	policy gamification.Policy,
	clk clock.Clock,
	locks *StudentLocks,
	queue jobs.JobQueue,
) StatsService {
	if locks == nil {
		locks = NewStudentLocks()
	}
	return &statsService{
		store:  store,
		mirror: mirror,
		sync:   sync,
		policy: policy,
		clock:  clk,
		locks:  locks,
		queue:  queue,
	}
}

func (s *statsService) Policy() gamification.Policy { return s.policy }

func (s *statsService) Locks() *StudentLocks { return s.locks }

func (s *statsService) Load(ctx context.Context, username string) (*models.StudentStats, error) {
	log := logger.FromContext(ctx).WithField("student", username)

	if !models.ValidUsername(username) {
		return nil, errors.NewValidationError("username", "must be 1-50 letters, digits, '_' or '-'")
	}

	stats, err := s.store.Load(ctx, username)
	fromMirror := false
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			log.Error("failed to read stats file: %v", err)
			return nil, errors.NewInternalError(err)
		}
		stats, err = s.loadFromMirror(ctx, username)
		if err != nil {
			return nil, err
		}
		fromMirror = true
	}

	if s.policy.Prepare(stats, username) {
		log.Debug("stats record normalized")
	}
	if fromMirror {
		s.policy.RebuildCurrentMonth(stats)
	}
	return stats, nil
}

func (s *statsService) loadFromMirror(ctx context.Context, username string) (*models.StudentStats, error) {
	log := logger.FromContext(ctx).WithField("student", username)
	if s.mirror == nil {
		return nil, errors.NewNotFoundError("student", username)
	}
	stats, err := s.mirror.LoadStats(ctx, username)
	if err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			log.Warn("relational fallback failed: %v", err)
		}
		return nil, errors.NewNotFoundError("student", username)
	}
	log.Info("stats file missing, rebuilt record from relational mirror")
	return stats, nil
}

func (s *statsService) Get(ctx context.Context, username string) (*models.StudentStats, error) {
	unlock := s.locks.Lock(username)
	defer unlock()

	stats, err := s.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	if gamification.ValidateStreak(stats, s.clock.Today()) {
		logger.FromContext(ctx).WithField("student", username).Debug("streak decayed on read")
		if err := s.Save(ctx, username, stats); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *statsService) Update(ctx context.Context, username string, fn func(*models.StudentStats) error) (*models.StudentStats, error) {
	unlock := s.locks.Lock(username)
	defer unlock()

	stats, err := s.Load(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := fn(stats); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, username, stats); err != nil {
		return nil, err
	}
	s.refreshLeaderboard(ctx)
	return stats, nil
}

func (s *statsService) Save(ctx context.Context, username string, stats *models.StudentStats) error {
	if err := s.store.Save(ctx, username, stats); err != nil {
		logger.FromContext(ctx).WithField("student", username).Error("failed to persist stats: %v", err)
		return errors.NewInternalError(err)
	}
	return s.sync.Sync(ctx, username, stats)
}

func (s *statsService) refreshLeaderboard(ctx context.Context) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueLeaderboard(); err != nil {
		logger.FromContext(ctx).Warn("failed to enqueue leaderboard refresh: %v", err)
	}
}
