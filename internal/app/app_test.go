package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/drumdungeon/internal/app"
	"github.com/vytor/drumdungeon/internal/config"
	"github.com/vytor/drumdungeon/internal/gamification"
	"github.com/vytor/drumdungeon/internal/testutil"
)

func testConfig(t *testing.T) config.Config {
	return config.Config{
		Addr:                 ":0",
		DataDir:              filepath.Join(t.TempDir(), "data"),
		LogLevel:             "ERROR",
		DBEnabled:            true,
		DBType:               "sqlite",
		DBPath:               ":memory:",
		WorkerCount:          1,
		QueueSize:            8,
		ReconcileConcurrency: 2,
		Policy:               gamification.DefaultPolicy(),
	}
}

func TestNew_WithMirror(t *testing.T) {
	ctx := context.Background()
	a, err := app.New(ctx, testConfig(t), app.Options{Clock: testutil.FixedClock("2024-05-10")})
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Mirror)
	assert.True(t, a.Sync.Enabled())

	_, err = a.Students.Create(ctx, "alice", "Alice", "")
	require.NoError(t, err)
	_, err = a.Practice.CompleteExercise(ctx, "alice", "tarator")
	require.NoError(t, err)

	// The mirror alone can rebuild the record.
	require.NoError(t, os.RemoveAll(filepath.Join(a.Config.DataDir, "students", "alice")))
	st, err := a.Stats.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 10, st.XP.Total)
	assert.Equal(t, 1, st.Streak.Current)
	assert.Equal(t, "Alice", st.Profile.Name)
}

func TestNew_FileOnly(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DBEnabled = false

	a, err := app.New(ctx, cfg, app.Options{Background: true, Clock: testutil.FixedClock("2024-05-10")})
	require.NoError(t, err)
	a.Start(ctx)
	defer a.Close()

	assert.Nil(t, a.Mirror)
	assert.False(t, a.Sync.Enabled())
	require.NotNil(t, a.Queue)

	_, err = a.Students.Create(ctx, "bob", "", "")
	require.NoError(t, err)

	board, err := a.Leaderboard.Generate(ctx)
	require.NoError(t, err)
	require.Len(t, board.Students, 1)

	srv := a.Server()
	assert.Nil(t, srv.Mirror)
	assert.NotNil(t, srv.JobQueue)
}

func TestNew_UnreachableMirrorFallsBack(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBType = "postgres"
	cfg.DatabaseURL = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	a, err := app.New(context.Background(), cfg, app.Options{})
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.Mirror)
}
