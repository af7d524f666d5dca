package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/models"
)

// NewTestDB opens an in-memory SQLite database with every migration applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(db.Config{Type: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	return database
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// FixedClock returns a clock pinned to noon UTC on day ("YYYY-MM-DD").
func FixedClock(day string) *clock.Fixed {
	d := models.MustParseDate(day)
	return clock.NewFixed(d.Time().Add(12 * time.Hour))
}
