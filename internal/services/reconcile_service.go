package services

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// ReconcileService repairs derived state and pushes records to the mirror.
type ReconcileService interface {
	// ReconcileStudent re-derives totals, level and medals, rewrites the file
	// when they differed, then mirrors strictly. It reports whether the file changed.
	ReconcileStudent(ctx context.Context, username string) (bool, error)
	// ReconcileAll reconciles every student with bounded concurrency. It
	// doubles as the batch import from files into the relational store.
	ReconcileAll(ctx context.Context) (*models.ReconcileReport, error)
}

// ErrMirrorSync marks a reconcile whose file step succeeded but whose mirror write failed.
var ErrMirrorSync = stderrors.New("reconcile: mirror sync failed")

type reconcileService struct {
	store       repository.StatsStore
	stats       StatsService
	students    StudentService
	sync        SyncService
	concurrency int
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(store repository.StatsStore, stats StatsService, students StudentService, sync SyncService, concurrency int) ReconcileService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &reconcileService{
		store:       store,
		stats:       stats,
		students:    students,
		sync:        sync,
		concurrency: concurrency,
	}
}

func (s *reconcileService) ReconcileStudent(ctx context.Context, username string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("reconcile").WithField("student", username)

	if !models.ValidUsername(username) {
		return false, errors.NewValidationError("username", "must be 1-50 letters, digits, '_' or '-'")
	}

	unlock := s.stats.Locks().Lock(username)
	defer unlock()

	policy := s.stats.Policy()
	changed := false

	st, err := s.store.Load(ctx, username)
	switch {
	case err == nil:
		changed = policy.Prepare(st, username)
	case stderrors.Is(err, repository.ErrNotFound):
		// Recover the file from the mirror.
		st, err = s.stats.Load(ctx, username)
		if err != nil {
			return false, err
		}
		changed = true
	default:
		log.Error("failed to read stats file: %v", err)
		return false, errors.NewInternalError(err)
	}

	if len(policy.EvaluateMedals(st)) > 0 {
		changed = true
	}

	if changed {
		if err := s.store.Save(ctx, username, st); err != nil {
			log.Error("failed to persist reconciled stats: %v", err)
			return false, errors.NewInternalError(err)
		}
		log.Info("reconciled: total=%d level=%d", st.XP.Total, st.Level.Current)
	}

	if err := s.sync.SyncStrict(ctx, username, st); err != nil {
		log.Warn("mirror sync failed: %v", err)
		return changed, stderrors.Join(ErrMirrorSync, err)
	}
	return changed, nil
}

func (s *reconcileService) ReconcileAll(ctx context.Context) (*models.ReconcileReport, error) {
	log := logger.FromContext(ctx).WithPrefix("reconcile")

	names, err := s.students.List(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.ReconcileReport{Students: len(names)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := s.ReconcileStudent(gctx, name)

			mu.Lock()
			defer mu.Unlock()
			if changed {
				report.Changed++
			}
			switch {
			case err == nil:
			case stderrors.Is(err, ErrMirrorSync):
				report.MirrorFailures++
			default:
				report.Failed = append(report.Failed, name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	log.Info("reconcile finished: students=%d changed=%d mirror_failures=%d failed=%d",
		report.Students, report.Changed, report.MirrorFailures, len(report.Failed))
	return report, nil
}
