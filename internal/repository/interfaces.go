package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/drumdungeon/internal/models"
)

// ErrNotFound is returned by stores when the requested student has no record.
var ErrNotFound = errors.New("not found")

// StatsStore is the primary, file-backed home of each student's stats.
type StatsStore interface {
	Load(ctx context.Context, username string) (*models.StudentStats, error)
	Save(ctx context.Context, username string, stats *models.StudentStats) error
	Exists(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, username string) error
	List(ctx context.Context) ([]string, error)
}

// PerformanceStore keeps the per-student BPM log.
type PerformanceStore interface {
	Load(ctx context.Context, username string) (models.PerformanceLog, error)
	Save(ctx context.Context, username string, log models.PerformanceLog) error
}

// LeaderboardStore persists the last generated leaderboard snapshot.
type LeaderboardStore interface {
	Load(ctx context.Context) (*models.Leaderboard, error)
	Save(ctx context.Context, board *models.Leaderboard) error
}

// MirrorRepository is the relational copy of the stats records.
type MirrorRepository interface {
	// WithTx runs fn in one transaction; any error rolls everything back.
	WithTx(ctx context.Context, fn func(MirrorTx) error) error
	// LoadStats rebuilds a record from rows. Returns ErrNotFound for unknown students.
	LoadStats(ctx context.Context, username string) (*models.StudentStats, error)
	Exists(ctx context.Context, username string) (bool, error)
	ListStudents(ctx context.Context) ([]string, error)
	DeleteStudent(ctx context.Context, username string) error
	Ping(ctx context.Context) error
}

// MirrorTx is the set of statements a sync issues inside its transaction.
type MirrorTx interface {
	UpsertStudent(ctx context.Context, username, displayName, avatar string) (int64, error)
	// UpsertXP stamps updatedAt only when the stored values differ.
	UpsertXP(ctx context.Context, studentID int64, xp models.XP, updatedAt time.Time) error
	UpsertStreak(ctx context.Context, studentID int64, streak models.Streak) error

	AttendanceDates(ctx context.Context, studentID int64) (map[string]bool, error)
	InsertAttendance(ctx context.Context, studentID int64, date models.Date) error

	HistoryKeys(ctx context.Context, studentID int64) (map[models.HistoryKey]bool, error)
	InsertHistoryEvent(ctx context.Context, studentID int64, event models.HistoryEvent) error

	MedalIDs(ctx context.Context, studentID int64) (map[string]bool, error)
	InsertMedal(ctx context.Context, studentID int64, medal string) error

	MilestoneKeys(ctx context.Context, studentID int64) (map[string]bool, error)
	InsertMilestone(ctx context.Context, studentID int64, key string) error
}
