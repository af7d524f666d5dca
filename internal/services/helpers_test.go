package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/drumdungeon/internal/clock"
	apperrors "github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/gamification"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
	"github.com/vytor/drumdungeon/internal/repository/jsonfile"
	"github.com/vytor/drumdungeon/internal/services"
	"github.com/vytor/drumdungeon/internal/testutil"
	"github.com/vytor/drumdungeon/internal/testutil/mocks"
)

// env wires the services over a temp-dir file store and a fixed clock.
type env struct {
	dir      string
	store    repository.StatsStore
	clock    *clock.Fixed
	queue    *mocks.MockJobQueue
	locks    *services.StudentLocks
	sync     services.SyncService
	stats    services.StatsService
	students services.StudentService
}

func newEnv(t *testing.T, mirror repository.MirrorRepository) *env {
	t.Helper()
	e := &env{
		dir:   t.TempDir(),
		clock: testutil.FixedClock("2024-05-10"),
		queue: &mocks.MockJobQueue{},
		locks: services.NewStudentLocks(),
	}
	e.queue.On("EnqueueLeaderboard").Return(nil).Maybe()
	e.store = jsonfile.NewStatsStore(e.dir)
	e.sync = services.NewSyncService(mirror, e.clock)
	e.stats = services.NewStatsService(e.store, mirror, e.sync, gamification.DefaultPolicy(), e.clock, e.locks, e.queue)
	e.students = services.NewStudentService(e.store, mirror, e.stats, e.queue)
	return e
}

func (e *env) enroll(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := e.students.Create(context.Background(), name, "", "")
		require.NoError(t, err)
	}
}

func (e *env) reload(t *testing.T, name string) *models.StudentStats {
	t.Helper()
	st, err := e.store.Load(context.Background(), name)
	require.NoError(t, err)
	return st
}

func (e *env) write(t *testing.T, st *models.StudentStats) {
	t.Helper()
	require.NoError(t, e.store.Save(context.Background(), st.Student, st))
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}

// failingMirror returns a mirror whose transactions always fail.
func failingMirror(err error) *mocks.MockMirrorRepository {
	m := &mocks.MockMirrorRepository{}
	m.On("WithTx", mock.Anything).Return(err)
	m.On("Exists", mock.Anything, mock.Anything).Return(false, err).Maybe()
	return m
}
