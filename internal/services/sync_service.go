package services

import (
	"context"

	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// SyncService mirrors a stats record into the relational store.
type SyncService interface {
	// Sync is best-effort: failures are logged and rolled back, never returned.
	Sync(ctx context.Context, username string, stats *models.StudentStats) error
	// SyncStrict is Sync but reports the failure.
	SyncStrict(ctx context.Context, username string, stats *models.StudentStats) error
	Enabled() bool
}

type syncService struct {
	mirror repository.MirrorRepository
	clock  clock.Clock
}

// NewSyncService creates a SyncService. A nil mirror disables syncing.
func NewSyncService(mirror repository.MirrorRepository, clk clock.Clock) SyncService {
	return &syncService{mirror: mirror, clock: clk}
}

func (s *syncService) Enabled() bool {
	return s.mirror != nil
}

func (s *syncService) Sync(ctx context.Context, username string, stats *models.StudentStats) error {
	if err := s.SyncStrict(ctx, username, stats); err != nil {
		logger.FromContext(ctx).WithPrefix("sync").WithField("student", username).WithError(err).
			Warn("relational mirror update failed, file store remains authoritative")
	}
	return nil
}

func (s *syncService) SyncStrict(ctx context.Context, username string, stats *models.StudentStats) error {
	if s.mirror == nil {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("sync").WithField("student", username)

	var inserted int
	err := s.mirror.WithTx(ctx, func(tx repository.MirrorTx) error {
		id, err := tx.UpsertStudent(ctx, username, stats.Profile.Name, stats.Profile.Avatar)
		if err != nil {
			return err
		}
		if err := tx.UpsertXP(ctx, id, stats.XP, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.UpsertStreak(ctx, id, stats.Streak); err != nil {
			return err
		}

		dates, err := tx.AttendanceDates(ctx, id)
		if err != nil {
			return err
		}
		for _, d := range stats.Attendance.Dates {
			key := d.String()
			if dates[key] {
				continue
			}
			if err := tx.InsertAttendance(ctx, id, d); err != nil {
				return err
			}
			dates[key] = true
			inserted++
		}

		events, err := tx.HistoryKeys(ctx, id)
		if err != nil {
			return err
		}
		for _, ev := range stats.History.Events {
			key := ev.Key()
			if events[key] {
				continue
			}
			if err := tx.InsertHistoryEvent(ctx, id, ev); err != nil {
				return err
			}
			events[key] = true
			inserted++
		}

		medals, err := tx.MedalIDs(ctx, id)
		if err != nil {
			return err
		}
		for _, m := range stats.Medals {
			if medals[m] {
				continue
			}
			if err := tx.InsertMedal(ctx, id, m); err != nil {
				return err
			}
			medals[m] = true
			inserted++
		}

		reached, err := tx.MilestoneKeys(ctx, id)
		if err != nil {
			return err
		}
		for key, ok := range stats.Milestones {
			if !ok || reached[key] {
				continue
			}
			if err := tx.InsertMilestone(ctx, id, key); err != nil {
				return err
			}
			reached[key] = true
			inserted++
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("mirror synced: new_rows=%d", inserted)
	return nil
}
