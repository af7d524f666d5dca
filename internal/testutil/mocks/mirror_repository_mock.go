package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

// MockMirrorRepository is a mock implementation of repository.MirrorRepository.
// WithTx hands Tx to the callback when set, so tests can script the statements.
type MockMirrorRepository struct {
	mock.Mock
	Tx repository.MirrorTx
}

func (m *MockMirrorRepository) WithTx(ctx context.Context, fn func(repository.MirrorTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	if m.Tx == nil {
		return nil
	}
	return fn(m.Tx)
}

func (m *MockMirrorRepository) LoadStats(ctx context.Context, username string) (*models.StudentStats, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentStats), args.Error(1)
}

func (m *MockMirrorRepository) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockMirrorRepository) ListStudents(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockMirrorRepository) DeleteStudent(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockMirrorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockMirrorTx is a mock implementation of repository.MirrorTx
type MockMirrorTx struct {
	mock.Mock
}

func (m *MockMirrorTx) UpsertStudent(ctx context.Context, username, displayName, avatar string) (int64, error) {
	args := m.Called(ctx, username, displayName, avatar)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMirrorTx) UpsertXP(ctx context.Context, studentID int64, xp models.XP, updatedAt time.Time) error {
	args := m.Called(ctx, studentID, xp, updatedAt)
	return args.Error(0)
}

func (m *MockMirrorTx) UpsertStreak(ctx context.Context, studentID int64, streak models.Streak) error {
	args := m.Called(ctx, studentID, streak)
	return args.Error(0)
}

func (m *MockMirrorTx) AttendanceDates(ctx context.Context, studentID int64) (map[string]bool, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockMirrorTx) InsertAttendance(ctx context.Context, studentID int64, date models.Date) error {
	args := m.Called(ctx, studentID, date)
	return args.Error(0)
}

func (m *MockMirrorTx) HistoryKeys(ctx context.Context, studentID int64) (map[models.HistoryKey]bool, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[models.HistoryKey]bool), args.Error(1)
}

func (m *MockMirrorTx) InsertHistoryEvent(ctx context.Context, studentID int64, event models.HistoryEvent) error {
	args := m.Called(ctx, studentID, event)
	return args.Error(0)
}

func (m *MockMirrorTx) MedalIDs(ctx context.Context, studentID int64) (map[string]bool, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockMirrorTx) InsertMedal(ctx context.Context, studentID int64, medal string) error {
	args := m.Called(ctx, studentID, medal)
	return args.Error(0)
}

func (m *MockMirrorTx) MilestoneKeys(ctx context.Context, studentID int64) (map[string]bool, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockMirrorTx) InsertMilestone(ctx context.Context, studentID int64, key string) error {
	args := m.Called(ctx, studentID, key)
	return args.Error(0)
}
