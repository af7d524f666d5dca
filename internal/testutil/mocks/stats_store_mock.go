package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/drumdungeon/internal/models"
)

// MockStatsStore is a mock implementation of repository.StatsStore
type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) Load(ctx context.Context, username string) (*models.StudentStats, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StudentStats), args.Error(1)
}

func (m *MockStatsStore) Save(ctx context.Context, username string, stats *models.StudentStats) error {
	args := m.Called(ctx, username, stats)
	return args.Error(0)
}

func (m *MockStatsStore) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatsStore) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockStatsStore) List(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}
