package jsonfile

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

type performanceStore struct {
	root string
}

func NewPerformanceStore(dataDir string) repository.PerformanceStore {
	return &performanceStore{root: dataDir}
}

// Load returns an empty log for students who never logged a session.
func (s *performanceStore) Load(ctx context.Context, username string) (models.PerformanceLog, error) {
	dir, err := studentDir(s.root, username)
	if err != nil {
		return nil, err
	}
	perf := models.PerformanceLog{}
	if err := readJSON(filepath.Join(dir, performanceFile), &perf); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.PerformanceLog{}, nil
		}
		return nil, err
	}
	return perf, nil
}

func (s *performanceStore) Save(ctx context.Context, username string, perf models.PerformanceLog) error {
	dir, err := studentDir(s.root, username)
	if err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, performanceFile), perf); err != nil {
		logger.FromContext(ctx).WithPrefix("performance_store").Error("failed to write performance log: student=%s err=%v", username, err)
		return err
	}
	return nil
}
