package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/jobs"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// StudentService handles enrollment and removal of students
type StudentService interface {
	Create(ctx context.Context, username, displayName, avatar string) (*models.StudentStats, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]string, error)
}

type studentService struct {
	store  repository.StatsStore
	mirror repository.MirrorRepository
	stats  StatsService
	queue  jobs.JobQueue
}

// NewStudentService creates a new StudentService. mirror and queue may be nil.
func NewStudentService(store repository.StatsStore, mirror repository.MirrorRepository, stats StatsService, queue jobs.JobQueue) StudentService {
	return &studentService{store: store, mirror: mirror, stats: stats, queue: queue}
}

func (s *studentService) Create(ctx context.Context, username, displayName, avatar string) (*models.StudentStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating student: username=%s", username)

	username = strings.TrimSpace(username)
	if !models.ValidUsername(username) {
		return nil, errors.NewValidationError("username", "must be 1-50 letters, digits, '_' or '-'")
	}

	unlock := s.stats.Locks().Lock(username)
	defer unlock()

	exists, err := s.store.Exists(ctx, username)
	if err != nil {
		log.Error("failed to check student: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if !exists && s.mirror != nil {
		// A student whose file was lost still owns rows in the mirror; a fresh
		// zero record would overwrite their totals there.
		exists, err = s.mirror.Exists(ctx, username)
		if err != nil {
			log.Warn("could not check relational mirror, enrolling from file store only: %v", err)
			exists = false
		}
	}
	if exists {
		return nil, errors.NewConflictError("student", username)
	}

	policy := s.stats.Policy()
	stats := models.NewStudentStats(username, policy.RequiredXPForLevel(1))
	if name := strings.TrimSpace(displayName); name != "" {
		stats.Profile.Name = name
	}
	if a := strings.TrimSpace(avatar); a != "" {
		stats.Profile.Avatar = a
	}
	policy.Prepare(stats, username)

	if err := s.stats.Save(ctx, username, stats); err != nil {
		return nil, err
	}
	s.refreshLeaderboard(ctx)

	log.Info("student created: username=%s", username)
	return stats, nil
}

func (s *studentService) Delete(ctx context.Context, username string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting student: username=%s", username)

	if !models.ValidUsername(username) {
		return errors.NewValidationError("username", "must be 1-50 letters, digits, '_' or '-'")
	}

	unlock := s.stats.Locks().Lock(username)
	defer unlock()

	found := false
	if err := s.store.Delete(ctx, username); err != nil {
		if !stderrors.Is(err, repository.ErrNotFound) {
			log.Error("failed to delete student files: %v", err)
			return errors.NewInternalError(err)
		}
	} else {
		found = true
	}

	if s.mirror != nil {
		if err := s.mirror.DeleteStudent(ctx, username); err != nil {
			if !stderrors.Is(err, repository.ErrNotFound) {
				log.Warn("failed to delete mirrored rows: %v", err)
			}
		} else {
			found = true
		}
	}

	if !found {
		return errors.NewNotFoundError("student", username)
	}
	s.refreshLeaderboard(ctx)
	log.Info("student deleted: username=%s", username)
	return nil
}

func (s *studentService) List(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing students")

	names, err := s.store.List(ctx)
	if err != nil {
		log.Error("failed to list students: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(names) > 0 || s.mirror == nil {
		return names, nil
	}

	names, err = s.mirror.ListStudents(ctx)
	if err != nil {
		log.Warn("relational fallback failed while listing students: %v", err)
		return []string{}, nil
	}
	return names, nil
}

func (s *studentService) refreshLeaderboard(ctx context.Context) {
	if s.queue == nil {
		return
	}
	if err := s.queue.EnqueueLeaderboard(); err != nil {
		logger.FromContext(ctx).Warn("failed to enqueue leaderboard refresh: %v", err)
	}
}
