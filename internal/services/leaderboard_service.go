package services

import (
	"context"
	"sort"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// LeaderboardCache is the shared store a generated board is published to.
type LeaderboardCache interface {
	Publish(ctx context.Context, board *models.Leaderboard) error
	Top(ctx context.Context, n int) (*models.Leaderboard, error)
	Invalidate(ctx context.Context) error
}

// LeaderboardService ranks every student.
type LeaderboardService interface {
	Build(ctx context.Context) (*models.Leaderboard, error)
	// Generate builds the board, writes leaderboard.json and publishes it.
	Generate(ctx context.Context) (*models.Leaderboard, error)
	// Top returns the first n entries, all of them when n <= 0.
	Top(ctx context.Context, n int) (*models.Leaderboard, error)
	// Invalidate drops the published board so reads rebuild from the stores.
	Invalidate(ctx context.Context) error
}

type leaderboardService struct {
	students StudentService
	stats    StatsService
	store    repository.LeaderboardStore
	cache    LeaderboardCache
	clock    clock.Clock
}

// NewLeaderboardService creates a new LeaderboardService. cache may be nil.
func NewLeaderboardService(students StudentService, stats StatsService, store repository.LeaderboardStore, cache LeaderboardCache, clk clock.Clock) LeaderboardService {
	return &leaderboardService{
		students: students,
		stats:    stats,
		store:    store,
		cache:    cache,
		clock:    clk,
	}
}

func (s *leaderboardService) Build(ctx context.Context) (*models.Leaderboard, error) {
	log := logger.FromContext(ctx).WithPrefix("leaderboard")

	names, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(names))
	for _, name := range names {
		st, err := s.stats.Load(ctx, name)
		if err != nil {
			// Removed between listing and loading.
			if !errors.IsNotFound(err) {
				log.Warn("skipping student %s: %v", name, err)
			}
			continue
		}
		entries = append(entries, models.NewLeaderboardEntry(st))
	}
	RankEntries(entries)

	return &models.Leaderboard{GeneratedAt: s.clock.Now(), Students: entries}, nil
}

// RankEntries orders by level, XP and streak (all descending), then username,
// and numbers the entries from 1.
func RankEntries(entries []models.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		if a.XPTotal != b.XPTotal {
			return a.XPTotal > b.XPTotal
		}
		if a.Streak != b.Streak {
			return a.Streak > b.Streak
		}
		return a.Username < b.Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

func (s *leaderboardService) Generate(ctx context.Context) (*models.Leaderboard, error) {
	log := logger.FromContext(ctx).WithPrefix("leaderboard")

	board, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, board); err != nil {
		log.Error("failed to write leaderboard: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if s.cache != nil {
		if err := s.cache.Publish(ctx, board); err != nil {
			log.Warn("failed to publish leaderboard to cache: %v", err)
		}
	}

	log.Info("leaderboard generated: students=%d", len(board.Students))
	return board, nil
}

func (s *leaderboardService) Top(ctx context.Context, n int) (*models.Leaderboard, error) {
	log := logger.FromContext(ctx).WithPrefix("leaderboard")

	if s.cache != nil {
		board, err := s.cache.Top(ctx, n)
		if err == nil && len(board.Students) > 0 {
			return board, nil
		}
		if err != nil {
			log.Debug("cache miss, building leaderboard: %v", err)
		}
	}

	board, err := s.Build(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(board.Students) > n {
		board.Students = board.Students[:n]
	}
	return board, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx)
}
