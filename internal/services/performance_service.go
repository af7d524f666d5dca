package services

import (
	"context"
	"sort"
	"strings"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// PerformanceService keeps the per-exercise BPM log and summarizes it.
type PerformanceService interface {
	Log(ctx context.Context, username, exercise string, startBPM, endBPM int) (*models.PerformanceEntry, error)
	AverageIncrease(ctx context.Context, username string) ([]models.AverageIncrease, error)
	// BestSessionSince returns the largest BPM jump within the last days,
	// or nil when there were no sessions.
	BestSessionSince(ctx context.Context, username string, days int) (*models.BestSession, error)
	DifficultyUsage(ctx context.Context, username string) (*models.DifficultyUsage, error)
}

type performanceService struct {
	perf  repository.PerformanceStore
	store repository.StatsStore
	locks *StudentLocks
	clock clock.Clock
}

// NewPerformanceService creates a new PerformanceService
func NewPerformanceService(perf repository.PerformanceStore, store repository.StatsStore, locks *StudentLocks, clk clock.Clock) PerformanceService {
	if locks == nil {
		locks = NewStudentLocks()
	}
	return &performanceService{perf: perf, store: store, locks: locks, clock: clk}
}

func (s *performanceService) Log(ctx context.Context, username, exercise string, startBPM, endBPM int) (*models.PerformanceEntry, error) {
	log := logger.FromContext(ctx).WithField("student", username)

	exercise = strings.TrimSpace(exercise)
	if exercise == "" {
		return nil, errors.NewValidationError("exercise", "cannot be empty")
	}
	if startBPM <= 0 || endBPM <= 0 {
		return nil, errors.NewValidationError("bpm", "must be positive")
	}

	unlock := s.locks.Lock(username)
	defer unlock()

	perf, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	entry := models.PerformanceEntry{
		Date:       s.clock.Today(),
		StartBPM:   startBPM,
		EndBPM:     endBPM,
		Difficulty: models.DifficultyFor(endBPM),
	}
	perf[exercise] = append(perf[exercise], entry)

	if err := s.perf.Save(ctx, username, perf); err != nil {
		log.Error("failed to persist performance log: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("practice logged: exercise=%s bpm=%d->%d difficulty=%s", exercise, startBPM, endBPM, entry.Difficulty)
	return &entry, nil
}

func (s *performanceService) AverageIncrease(ctx context.Context, username string) ([]models.AverageIncrease, error) {
	perf, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	out := make([]models.AverageIncrease, 0, len(perf))
	for _, exercise := range exerciseNames(perf) {
		sessions := perf[exercise]
		if len(sessions) == 0 {
			continue
		}
		sum := 0
		for _, e := range sessions {
			sum += e.Increase()
		}
		out = append(out, models.AverageIncrease{
			Exercise: exercise,
			Sessions: len(sessions),
			Average:  float64(sum) / float64(len(sessions)),
		})
	}
	return out, nil
}

func (s *performanceService) BestSessionSince(ctx context.Context, username string, days int) (*models.BestSession, error) {
	if days < 0 {
		return nil, errors.NewValidationError("days", "cannot be negative")
	}
	perf, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	cutoff := s.clock.Today().AddDays(-days)
	var best *models.BestSession
	for _, exercise := range exerciseNames(perf) {
		for _, e := range perf[exercise] {
			if e.Date.Before(cutoff) {
				continue
			}
			if best == nil || e.Increase() > best.Entry.Increase() {
				best = &models.BestSession{Exercise: exercise, Entry: e}
			}
		}
	}
	return best, nil
}

func (s *performanceService) DifficultyUsage(ctx context.Context, username string) (*models.DifficultyUsage, error) {
	perf, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}

	usage := &models.DifficultyUsage{Counts: map[string]int{}, Transitions: map[string]int{}}
	for _, sessions := range perf {
		ordered := append([]models.PerformanceEntry(nil), sessions...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Date.Before(ordered[j].Date)
		})
		last := ""
		for _, e := range ordered {
			usage.Counts[e.Difficulty]++
			if last != "" && last != e.Difficulty {
				usage.Transitions[last+"->"+e.Difficulty]++
			}
			last = e.Difficulty
		}
	}
	return usage, nil
}

// load returns the student's log, empty when nothing was logged yet.
func (s *performanceService) load(ctx context.Context, username string) (models.PerformanceLog, error) {
	log := logger.FromContext(ctx).WithField("student", username)

	if !models.ValidUsername(username) {
		return nil, errors.NewValidationError("username", "must be 1-50 letters, digits, '_' or '-'")
	}
	exists, err := s.store.Exists(ctx, username)
	if err != nil {
		log.Error("failed to check student: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !exists {
		return nil, errors.NewNotFoundError("student", username)
	}

	perf, err := s.perf.Load(ctx, username)
	if err != nil {
		log.Error("failed to read performance log: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if perf == nil {
		perf = models.PerformanceLog{}
	}
	return perf, nil
}

func exerciseNames(perf models.PerformanceLog) []string {
	names := make([]string, 0, len(perf))
	for name := range perf {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
