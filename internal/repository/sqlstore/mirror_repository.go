// Package sqlstore implements the relational mirror on top of internal/db.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// childTables hold per-student rows, deleted before the student row itself.
var childTables = []string{"xp", "xp_categories", "streaks", "attendance", "history_events", "student_medals", "student_milestones"}

type mirrorRepository struct {
	db *db.DB
}

// NewMirrorRepository creates a MirrorRepository backed by database.
func NewMirrorRepository(database *db.DB) repository.MirrorRepository {
	return &mirrorRepository{db: database}
}

func (r *mirrorRepository) WithTx(ctx context.Context, fn func(repository.MirrorTx) error) error {
	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		return fn(&mirrorTx{tx: tx, sb: r.db.Builder(), dialect: r.db.Dialect})
	})
}

func (r *mirrorRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *mirrorRepository) ListStudents(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("mirror_repo")

	query, args, err := r.db.Builder().Select("username").From("students").OrderBy("username ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list students: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *mirrorRepository) Exists(ctx context.Context, username string) (bool, error) {
	_, err := studentID(ctx, r.db, r.db.Builder(), username)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *mirrorRepository) DeleteStudent(ctx context.Context, username string) error {
	log := logger.FromContext(ctx).WithPrefix("mirror_repo")
	sb := r.db.Builder()

	return r.db.Tx(ctx, func(tx *sql.Tx) error {
		id, err := studentID(ctx, tx, sb, username)
		if err != nil {
			return err
		}
		for _, table := range childTables {
			query, args, err := sb.Delete(table).Where(squirrel.Eq{"student_id": id}).ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("delete %s rows: %w", table, err)
			}
		}
		query, args, err := sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
		log.Info("student rows deleted: student=%s", username)
		return nil
	})
}

// LoadStats rebuilds the stored parts of a record. Derived values (level,
// monthly counters) are left for the caller to recompute.
func (r *mirrorRepository) LoadStats(ctx context.Context, username string) (*models.StudentStats, error) {
	log := logger.FromContext(ctx).WithPrefix("mirror_repo")
	log.Debug("loading stats from mirror: student=%s", username)

	sb := r.db.Builder()
	var stats *models.StudentStats
	err := r.db.Tx(ctx, func(tx *sql.Tx) error {
		var (
			id    int64
			s     = &models.StudentStats{Student: username}
			query string
			args  []any
			err   error
		)

		query, args, err = sb.Select("id", "display_name", "avatar").From("students").Where(squirrel.Eq{"username": username}).ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id, &s.Profile.Name, &s.Profile.Avatar); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("student %s: %w", username, repository.ErrNotFound)
			}
			return err
		}

		mt := &mirrorTx{tx: tx, sb: sb, dialect: r.db.Dialect}
		if s.XP, _, err = mt.storedXP(ctx, id); err != nil {
			return err
		}

		query, args, err = sb.Select("current_streak", "longest_streak", "last_practice_date").From("streaks").Where(squirrel.Eq{"student_id": id}).ToSql()
		if err != nil {
			return err
		}
		err = tx.QueryRowContext(ctx, query, args...).Scan(&s.Streak.Current, &s.Streak.Longest, &s.Streak.LastPracticeDate)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if s.Attendance.Dates, err = mt.attendanceList(ctx, id); err != nil {
			return err
		}
		s.Attendance.LifetimeLessons = len(s.Attendance.Dates)

		if s.History.Events, err = mt.historyList(ctx, id); err != nil {
			return err
		}

		medals, err := mt.MedalIDs(ctx, id)
		if err != nil {
			return err
		}
		s.Medals = sortedKeys(medals)

		milestones, err := mt.MilestoneKeys(ctx, id)
		if err != nil {
			return err
		}
		s.Milestones = milestones

		stats = s
		return nil
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			log.Error("failed to load stats from mirror: student=%s err=%v", username, err)
		}
		return nil, err
	}
	return stats, nil
}
