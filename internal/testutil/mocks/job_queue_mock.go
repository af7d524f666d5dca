package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReconcile(username string) error {
	args := m.Called(username)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueReconcileAll() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueLeaderboard() error {
	args := m.Called()
	return args.Error(0)
}
