package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository/sqlstore"
	"github.com/vytor/drumdungeon/internal/testutil"
)

var mirrorTables = []string{
	"students", "xp", "xp_categories", "streaks", "attendance",
	"history_events", "student_medals", "student_milestones",
}

// tableRows renders every row of table, ordered, for whole-table comparisons.
func tableRows(t *testing.T, database *db.DB, table string) []string {
	t.Helper()
	rows, err := database.Query("SELECT * FROM " + table + " ORDER BY 1, 2")
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)
	out := []string{}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, fmt.Sprint(vals...))
	}
	require.NoError(t, rows.Err())
	return out
}

func snapshot(t *testing.T, database *db.DB) map[string][]string {
	t.Helper()
	out := make(map[string][]string, len(mirrorTables))
	for _, table := range mirrorTables {
		out[table] = tableRows(t, database, table)
	}
	return out
}

// busyRecord repeats a lesson date and same-day events, as a student who
// practised one exercise twice and had a lesson re-entered would.
func busyRecord() *models.StudentStats {
	st := models.NewStudentStats("alice", 100)
	grade := 9.0
	st.XP.Categories[models.CategoryPadPractice] = 20
	st.XP.Categories[models.CategoryAttendance] = 40
	st.XP.Categories["legacy_bonus"] = 15
	st.XP.Total = 75
	st.Streak = models.Streak{Current: 2, Longest: 4, LastPracticeDate: models.MustParseDate("2024-05-09")}
	st.Attendance.Dates = []models.Date{
		models.MustParseDate("2024-05-01"),
		models.MustParseDate("2024-05-01"),
		models.MustParseDate("2024-05-08"),
	}
	st.Attendance.LifetimeLessons = 3
	st.History.Events = []models.HistoryEvent{
		{Type: models.EventAttendance, Name: "Private Lesson", Date: models.MustParseDate("2024-05-01"), Grade: &grade},
		{Type: models.EventAttendance, Name: "Private Lesson", Date: models.MustParseDate("2024-05-01"), Grade: &grade},
		{Type: models.EventPad, Name: "tarator", Date: models.MustParseDate("2024-05-09")},
		{Type: models.EventPad, Name: "tarator", Date: models.MustParseDate("2024-05-09")},
		{Type: models.EventPad, Name: "single_strokes", Date: models.MustParseDate("2024-05-09")},
	}
	st.Medals = []string{"streak_3"}
	st.Milestones = map[string]bool{"3_day": true, "7_day": false}
	return st
}

func TestSyncService_ReplayLeavesMirrorUnchanged(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	e := newEnv(t, sqlstore.NewMirrorRepository(database))
	ctx := context.Background()
	st := busyRecord()

	require.NoError(t, e.sync.SyncStrict(ctx, "alice", st))
	first := snapshot(t, database)

	assert.Len(t, first["students"], 1)
	assert.Len(t, first["xp"], 1)
	assert.Len(t, first["xp_categories"], 1)
	assert.Len(t, first["streaks"], 1)
	assert.Len(t, first["attendance"], 2, "one row per lesson date")
	assert.Len(t, first["history_events"], 3, "one row per (date, type, name)")
	assert.Len(t, first["student_medals"], 1)
	assert.Len(t, first["student_milestones"], 1, "only reached milestones are stored")

	e.clock.Advance(3 * time.Hour)
	require.NoError(t, e.sync.SyncStrict(ctx, "alice", st))
	assert.Equal(t, first, snapshot(t, database))
}

func TestSyncService_StoresRecordValues(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	e := newEnv(t, sqlstore.NewMirrorRepository(database))
	ctx := context.Background()

	require.NoError(t, e.sync.SyncStrict(ctx, "alice", busyRecord()))

	var (
		total, pad, attendance, consistency int
		updatedAt                           time.Time
	)
	require.NoError(t, database.QueryRow(
		`SELECT total, pad_practice, attendance, consistency, updated_at FROM xp`,
	).Scan(&total, &pad, &attendance, &consistency, &updatedAt))
	assert.Equal(t, 75, total)
	assert.Equal(t, 20, pad)
	assert.Equal(t, 40, attendance)
	assert.Equal(t, 0, consistency)
	assert.True(t, e.clock.Now().Equal(updatedAt), "stamped with the injected clock")

	var (
		current, longest int
		last             models.Date
	)
	require.NoError(t, database.QueryRow(
		`SELECT current_streak, longest_streak, last_practice_date FROM streaks`,
	).Scan(&current, &longest, &last))
	assert.Equal(t, 2, current)
	assert.Equal(t, 4, longest)
	assert.Equal(t, "2024-05-09", last.String())

	var grade float64
	require.NoError(t, database.QueryRow(
		`SELECT grade FROM history_events WHERE event_type = ? AND event_name = ?`,
		models.EventAttendance, "Private Lesson",
	).Scan(&grade))
	assert.Equal(t, 9.0, grade)
}

func TestSyncService_ChangedTotalsRestamp(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	mirror := sqlstore.NewMirrorRepository(database)
	e := newEnv(t, mirror)
	ctx := context.Background()
	st := busyRecord()

	require.NoError(t, e.sync.SyncStrict(ctx, "alice", st))

	e.clock.Advance(24 * time.Hour)
	st.XP.Categories[models.CategoryPadPractice] += 10
	st.XP.Total += 10
	delete(st.XP.Categories, "legacy_bonus")
	st.XP.Total -= 15
	require.NoError(t, e.sync.SyncStrict(ctx, "alice", st))

	var updatedAt time.Time
	require.NoError(t, database.QueryRow(`SELECT updated_at FROM xp`).Scan(&updatedAt))
	assert.True(t, e.clock.Now().Equal(updatedAt))

	rebuilt, err := mirror.LoadStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 70, rebuilt.XP.Total)
	assert.NotContains(t, rebuilt.XP.Categories, "legacy_bonus")
}

func TestStatsService_FallbackKeepsExtraCategories(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	e := newEnv(t, sqlstore.NewMirrorRepository(database))
	ctx := context.Background()

	st := models.NewStudentStats("alice", 100)
	st.XP.Categories["legacy_bonus"] = 150
	e.stats.Policy().Prepare(st, "alice")
	require.NoError(t, e.stats.Save(ctx, "alice", st))
	fromFile, err := e.stats.Load(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, e.store.Delete(ctx, "alice"))
	fromMirror, err := e.stats.Load(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 150, fromFile.XP.Total)
	assert.Equal(t, fromFile.XP.Total, fromMirror.XP.Total)
	assert.Equal(t, fromFile.Level, fromMirror.Level)
}
