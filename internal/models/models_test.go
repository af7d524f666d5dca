package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/drumdungeon/internal/models"
)

func TestParseDate_TruncatesTimestamp(t *testing.T) {
	d, err := models.ParseDate("2024-03-05T14:22:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", d.String())
	assert.Equal(t, "2024-03", d.Month())
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := models.ParseDate("05/03/2024")
	assert.Error(t, err)
}

func TestParseDate_TrailingText(t *testing.T) {
	for _, in := range []string{"2024-05-01garbage", "2024-05-01x", "2024-05-01/12"} {
		_, err := models.ParseDate(in)
		assert.Error(t, err, in)
	}

	d, err := models.ParseDate("2024-05-01 18:30:00")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.String())

	var a struct {
		Date models.Date `json:"date"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"date":"2024-05-01garbage"}`), &a))
}

func TestDate_DaysSince(t *testing.T) {
	a := models.MustParseDate("2024-02-28")
	b := models.MustParseDate("2024-03-01")
	assert.Equal(t, 2, b.DaysSince(a), "leap day counts")
	assert.Equal(t, -2, a.DaysSince(b))
	assert.True(t, a.AddDays(2).Equal(b))
}

func TestDate_JSONNullRoundTrip(t *testing.T) {
	var s models.Streak
	require.NoError(t, json.Unmarshal([]byte(`{"current":2,"longest":3,"last_practice_date":null}`), &s))
	assert.True(t, s.LastPracticeDate.IsZero())

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"last_practice_date":null`)
}

func TestDate_Scan(t *testing.T) {
	var d models.Date
	require.NoError(t, d.Scan([]byte("2024-01-09")))
	assert.Equal(t, "2024-01-09", d.String())

	require.NoError(t, d.Scan(time.Date(2024, 1, 10, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2024-01-10", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestNewStudentStats_Defaults(t *testing.T) {
	s := models.NewStudentStats("alice", 100)

	assert.Equal(t, "alice", s.Student)
	assert.Equal(t, "alice", s.Profile.Name)
	assert.Equal(t, models.DefaultAvatar, s.Profile.Avatar)
	assert.Equal(t, 1, s.Level.Current)
	assert.Equal(t, 100, s.Level.XPToNext)
	assert.Equal(t, 0, s.XP.Total)
	assert.Len(t, s.XP.Categories, 3)
	assert.Empty(t, s.Medals)
	assert.NotNil(t, s.Attendance.Dates)
}

func TestNormalize_FillsMissingBlocks(t *testing.T) {
	var s models.StudentStats
	require.NoError(t, json.Unmarshal([]byte(`{"student":"bob","xp":{"total":5},"streak":{"current":4,"longest":1},"medals":["level_5","level_5","level_10"]}`), &s))

	changed := s.Normalize()

	assert.True(t, changed)
	assert.Equal(t, 0, s.XP.Categories[models.CategoryPadPractice])
	assert.Equal(t, 1, s.Level.Current)
	assert.Equal(t, 4, s.Streak.Longest)
	assert.Equal(t, []string{"level_10", "level_5"}, s.Medals)
	assert.NotNil(t, s.History.Events)
	assert.Equal(t, "bob", s.Profile.Name)

	assert.False(t, s.Normalize(), "second pass is a no-op")
}

func TestNormalize_KeepsUnknownCategories(t *testing.T) {
	s := models.NewStudentStats("carol", 100)
	s.XP.Categories["legacy"] = 7

	s.Normalize()

	assert.Equal(t, 7, s.XP.Categories["legacy"])
	assert.Equal(t, 7, s.SumCategories())
}

func TestDifficultyFor(t *testing.T) {
	assert.Equal(t, models.DifficultyEasy, models.DifficultyFor(90))
	assert.Equal(t, models.DifficultyIntermediate, models.DifficultyFor(91))
	assert.Equal(t, models.DifficultyIntermediate, models.DifficultyFor(140))
	assert.Equal(t, models.DifficultyAdvanced, models.DifficultyFor(141))
}
