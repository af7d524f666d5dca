package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

type statsStore struct {
	root string
}

// NewStatsStore creates a StatsStore rooted at dataDir.
func NewStatsStore(dataDir string) repository.StatsStore {
	return &statsStore{root: dataDir}
}

func (s *statsStore) path(username string) (string, error) {
	dir, err := studentDir(s.root, username)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, statsFile), nil
}

func (s *statsStore) Load(ctx context.Context, username string) (*models.StudentStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_store")
	log.Debug("loading stats: student=%s", username)

	path, err := s.path(username)
	if err != nil {
		return nil, err
	}
	var stats models.StudentStats
	if err := readJSON(path, &stats); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug("stats file not found: student=%s", username)
			return nil, fmt.Errorf("stats for %s: %w", username, repository.ErrNotFound)
		}
		log.Error("failed to read stats: student=%s err=%v", username, err)
		return nil, err
	}
	return &stats, nil
}

func (s *statsStore) Save(ctx context.Context, username string, stats *models.StudentStats) error {
	log := logger.FromContext(ctx).WithPrefix("stats_store")

	path, err := s.path(username)
	if err != nil {
		return err
	}
	if err := writeJSON(path, stats); err != nil {
		log.Error("failed to write stats: student=%s err=%v", username, err)
		return fmt.Errorf("write stats for %s: %w", username, err)
	}
	log.Debug("stats written: student=%s total_xp=%d", username, stats.XP.Total)
	return nil
}

func (s *statsStore) Exists(ctx context.Context, username string) (bool, error) {
	path, err := s.path(username)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Delete removes the student's whole directory, performance log included.
func (s *statsStore) Delete(ctx context.Context, username string) error {
	log := logger.FromContext(ctx).WithPrefix("stats_store")

	dir, err := studentDir(s.root, username)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("student %s: %w", username, repository.ErrNotFound)
	}
	if err := os.RemoveAll(dir); err != nil {
		log.Error("failed to remove student dir: student=%s err=%v", username, err)
		return err
	}
	log.Info("student directory removed: student=%s", username)
	return nil
}

// List returns the students that have a stats file, sorted by name.
func (s *statsStore) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, studentsDir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() || !models.ValidUsername(e.Name()) {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.root, studentsDir, e.Name(), statsFile)); err != nil {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}
