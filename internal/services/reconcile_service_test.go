package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository/sqlstore"
	"github.com/vytor/drumdungeon/internal/services"
	"github.com/vytor/drumdungeon/internal/testutil"
)

func driftedRecord(name string) *models.StudentStats {
	st := models.NewStudentStats(name, 100)
	st.XP.Categories[models.CategoryPadPractice] = 1000
	st.XP.Total = 3
	return st
}

func TestReconcileService_ReconcileStudent(t *testing.T) {
	e := newEnv(t, nil)
	e.write(t, driftedRecord("alice"))
	svc := services.NewReconcileService(e.store, e.stats, e.students, e.sync, 2)

	changed, err := svc.ReconcileStudent(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, changed)

	st := e.reload(t, "alice")
	assert.Equal(t, 1000, st.XP.Total)
	assert.Equal(t, 7, st.Level.Current)
	assert.Contains(t, st.Medals, "level_5")

	changed, err = svc.ReconcileStudent(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReconcileService_ReconcileStudent_NotFound(t *testing.T) {
	e := newEnv(t, nil)
	svc := services.NewReconcileService(e.store, e.stats, e.students, e.sync, 1)

	_, err := svc.ReconcileStudent(context.Background(), "ghost")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
}

func TestReconcileService_ReconcileAll_CountsMirrorFailures(t *testing.T) {
	e := newEnv(t, failingMirror(errors.New("db locked")))
	e.write(t, driftedRecord("alice"))
	e.write(t, models.NewStudentStats("bob", 100))
	svc := services.NewReconcileService(e.store, e.stats, e.students, e.sync, 4)

	report, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Students)
	assert.Equal(t, 2, report.MirrorFailures)
	assert.GreaterOrEqual(t, report.Changed, 1)
	assert.Empty(t, report.Failed)

	assert.Equal(t, 1000, e.reload(t, "alice").XP.Total)
}

func TestReconcileService_ReconcileAll_ImportsIntoMirror(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	mirror := sqlstore.NewMirrorRepository(database)

	e := newEnv(t, mirror)
	st := driftedRecord("alice")
	st.Attendance.Dates = []models.Date{models.MustParseDate("2024-05-01")}
	st.Attendance.LifetimeLessons = 1
	e.write(t, st)
	e.write(t, models.NewStudentStats("bob", 100))
	svc := services.NewReconcileService(e.store, e.stats, e.students, e.sync, 2)

	report, err := svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.MirrorFailures)

	names, err := mirror.ListStudents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, names)

	rebuilt, err := mirror.LoadStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1000, rebuilt.XP.Total)
	assert.Equal(t, 1, rebuilt.Attendance.LifetimeLessons)

	// A replay adds nothing.
	_, err = svc.ReconcileAll(context.Background())
	require.NoError(t, err)
	again, err := mirror.LoadStats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, again.Attendance.Dates, 1)
	assert.Equal(t, rebuilt.Medals, again.Medals)
}
