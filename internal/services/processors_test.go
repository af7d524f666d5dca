package services_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository/sqlstore"
	"github.com/vytor/drumdungeon/internal/services"
	"github.com/vytor/drumdungeon/internal/testutil"
)

func TestPracticeService_CompleteExercise(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewPracticeService(e.stats, e.clock)

	res, err := svc.CompleteExercise(context.Background(), "alice", "tarator")
	require.NoError(t, err)
	assert.Equal(t, 10, res.XPAwarded)
	assert.Equal(t, 1, res.Streak)
	assert.True(t, res.StreakAdvanced)

	st := e.reload(t, "alice")
	assert.Equal(t, 10, st.XP.Categories[models.CategoryPadPractice])
	assert.Equal(t, "2024-05-10", st.Streak.LastPracticeDate.String())
	require.Len(t, st.History.Events, 1)
	assert.Equal(t, models.HistoryEvent{Type: models.EventPad, Name: "tarator", Date: e.clock.Today()}, st.History.Events[0])
	assert.Equal(t, models.CategoryPadPractice, st.History.LastXPEvent)
}

func TestPracticeService_UnknownExerciseUsesDefault(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewPracticeService(e.stats, e.clock)

	res, err := svc.CompleteExercise(context.Background(), "alice", "freestyle")
	require.NoError(t, err)
	assert.Equal(t, 5, res.XPAwarded)
}

func TestPracticeService_SameDayTwice(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewPracticeService(e.stats, e.clock)
	ctx := context.Background()

	_, err := svc.CompleteExercise(ctx, "alice", "rebound_control")
	require.NoError(t, err)
	res, err := svc.CompleteExercise(ctx, "alice", "rebound_control")
	require.NoError(t, err)

	assert.False(t, res.StreakAdvanced)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, 10, res.TotalXP)
}

func TestPracticeService_Errors(t *testing.T) {
	e := newEnv(t, nil)
	svc := services.NewPracticeService(e.stats, e.clock)

	_, err := svc.CompleteExercise(context.Background(), "ghost", "tarator")
	requireAppError(t, err, apperrors.ErrCodeNotFound)

	_, err = svc.CompleteExercise(context.Background(), "ghost", "  ")
	requireAppError(t, err, apperrors.ErrCodeValidation)
}

func TestAttendanceService_MonthlyBonus(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewAttendanceService(e.stats, e.clock)
	ctx := context.Background()

	var last *models.AttendanceResult
	for _, d := range []string{"2024-05-01", "2024-05-08", "2024-05-15", "2024-05-22"} {
		res, err := svc.MarkAttendance(ctx, "alice", models.MustParseDate(d), nil)
		require.NoError(t, err)
		last = res
	}
	assert.True(t, last.BonusAwarded)

	st := e.reload(t, "alice")
	assert.Equal(t, 80, st.XP.Categories[models.CategoryAttendance])
	assert.Equal(t, 10, st.XP.Categories[models.CategoryConsistency])
	assert.Equal(t, 90, st.XP.Total)
	assert.Equal(t, 4, st.Attendance.LifetimeLessons)
	assert.Equal(t, models.CurrentMonth{Month: "2024-05", Count: 4, BonusAwarded: true}, st.Attendance.CurrentMonth)

	res, err := svc.MarkAttendance(ctx, "alice", models.MustParseDate("2024-05-29"), nil)
	require.NoError(t, err)
	assert.False(t, res.BonusAwarded)
	assert.Equal(t, 110, res.TotalXP)
}

func TestAttendanceService_DefaultsToTodayWithGrade(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewAttendanceService(e.stats, e.clock)
	grade := 4.5

	res, err := svc.MarkAttendance(context.Background(), "alice", models.Date{}, &grade)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", res.Date.String())

	st := e.reload(t, "alice")
	require.Len(t, st.History.Events, 1)
	ev := st.History.Events[0]
	assert.Equal(t, models.EventAttendance, ev.Type)
	assert.Equal(t, "Private Lesson", ev.Name)
	require.NotNil(t, ev.Grade)
	assert.Equal(t, 4.5, *ev.Grade)
}

func TestAttendanceService_RejectsNaNGrade(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewAttendanceService(e.stats, e.clock)
	grade := math.NaN()

	_, err := svc.MarkAttendance(context.Background(), "alice", models.Date{}, &grade)
	requireAppError(t, err, apperrors.ErrCodeValidation)
}

func TestStreakService_CheckIn(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "alice")
	svc := services.NewStreakService(e.stats, e.clock)
	ctx := context.Background()

	var res *models.CheckInResult
	for i := 0; i < 3; i++ {
		var err error
		res, err = svc.CheckIn(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, res.Advanced)
		e.clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, 3, res.Streak)
	assert.Equal(t, 15, res.Bonus)

	e.clock.Advance(-24 * time.Hour)
	again, err := svc.CheckIn(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, again.Advanced)
	assert.Equal(t, 0, again.Bonus)

	st := e.reload(t, "alice")
	assert.Equal(t, 15, st.XP.Categories[models.CategoryConsistency])
	assert.True(t, st.Milestones["3_day"])
	assert.Equal(t, "streak", st.History.LastXPEvent)
}

func TestStudentService_Create(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	st, err := e.students.Create(ctx, "carol", "Carol D.", "carol.png")
	require.NoError(t, err)
	assert.Equal(t, "Carol D.", st.Profile.Name)
	assert.Equal(t, "carol.png", st.Profile.Avatar)
	assert.Equal(t, models.Level{Current: 1, XPToNext: 100}, st.Level)

	_, err = e.students.Create(ctx, "carol", "", "")
	requireAppError(t, err, apperrors.ErrCodeConflict)

	_, err = e.students.Create(ctx, "bad name!", "", "")
	requireAppError(t, err, apperrors.ErrCodeValidation)

	names, err := e.students.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, names)
}

func TestStudentService_Create_ConflictsWithMirrorOnlyStudent(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	mirror := sqlstore.NewMirrorRepository(database)
	e := newEnv(t, mirror)
	ctx := context.Background()

	e.enroll(t, "alice")
	svc := services.NewAttendanceService(e.stats, e.clock)
	for _, d := range []string{"2024-05-01", "2024-05-02", "2024-05-03", "2024-05-04"} {
		_, err := svc.MarkAttendance(ctx, "alice", models.MustParseDate(d), nil)
		require.NoError(t, err)
	}
	require.NoError(t, e.store.Delete(ctx, "alice"))

	st, err := e.stats.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 90, st.XP.Total)

	_, err = e.students.Create(ctx, "alice", "", "")
	requireAppError(t, err, apperrors.ErrCodeConflict)

	rebuilt, err := mirror.LoadStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 90, rebuilt.XP.Total)
	assert.Len(t, rebuilt.Attendance.Dates, 4)

	exists, err := e.store.Exists(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, exists, "a rejected enrollment writes no file")
}

func TestStudentService_Delete(t *testing.T) {
	e := newEnv(t, nil)
	e.enroll(t, "dave")
	ctx := context.Background()

	require.NoError(t, e.students.Delete(ctx, "dave"))
	_, err := e.stats.Load(ctx, "dave")
	requireAppError(t, err, apperrors.ErrCodeNotFound)

	err = e.students.Delete(ctx, "dave")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
}
