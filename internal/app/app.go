// Package app wires configuration, storage and services into one graph shared
// by the HTTP server and the command line tool.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/vytor/drumdungeon/internal/api"
	"github.com/vytor/drumdungeon/internal/cache"
	"github.com/vytor/drumdungeon/internal/clock"
	"github.com/vytor/drumdungeon/internal/config"
	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/jobs"
	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/repository"
	"github.com/vytor/drumdungeon/internal/repository/jsonfile"
	"github.com/vytor/drumdungeon/internal/repository/sqlstore"
	"github.com/vytor/drumdungeon/internal/services"
	"github.com/vytor/drumdungeon/internal/worker"
)

type Options struct {
	// Background routes leaderboard refreshes through worker pools. Without it
	// nothing is queued and callers regenerate explicitly.
	Background bool
	Clock      clock.Clock
}

type App struct {
	Config config.Config
	Clock  clock.Clock

	DB     *db.DB
	Redis  *redis.Client
	Mirror repository.MirrorRepository
	Store  repository.StatsStore

	Stats       services.StatsService
	Students    services.StudentService
	Practice    services.PracticeService
	Attendance  services.AttendanceService
	Streak      services.StreakService
	Performance services.PerformanceService
	Leaderboard services.LeaderboardService
	Reconcile   services.ReconcileService
	Sync        services.SyncService

	Queue           *jobs.WorkerQueue
	reconcilePool   *worker.Pool
	leaderboardPool *worker.Pool
}

// New builds the service graph. The relational mirror and the Redis cache are
// optional: when they cannot be reached the app runs on the file store alone.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	log := logger.FromContext(ctx).WithPrefix("app")

	clk := opts.Clock
	if clk == nil {
		clk = clock.System{}
	}
	a := &App{Config: cfg, Clock: clk}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if cfg.DBEnabled {
		database, err := db.Open(db.Config{Type: cfg.DBType, Path: cfg.DBPath, URL: cfg.DatabaseURL})
		if err != nil {
			log.Info("relational mirror unavailable, continuing with file store only: %v", err)
		} else {
			a.DB = database
			a.Mirror = sqlstore.NewMirrorRepository(database)
		}
	} else {
		log.Info("relational mirror disabled")
	}

	var lbCache services.LeaderboardCache
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Warn("leaderboard cache unavailable: %v", err)
		} else {
			a.Redis = client
			lbCache = cache.NewLeaderboardCache(client, cache.DefaultTTL)
		}
	}

	var (
		queue  jobs.JobQueue
		inline *jobs.InlineQueue
	)
	if opts.Background {
		a.reconcilePool = worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
		a.leaderboardPool = worker.NewPool(1, cfg.QueueSize)
		a.Queue = jobs.NewWorkerQueue(a.reconcilePool, a.leaderboardPool, nil, nil)
		queue = a.Queue
	} else {
		// Without pools, writes still drop the shared cached board.
		inline = jobs.NewInlineQueue()
		queue = inline
	}

	a.Store = jsonfile.NewStatsStore(cfg.DataDir)
	locks := services.NewStudentLocks()
	a.Sync = services.NewSyncService(a.Mirror, clk)
	a.Stats = services.NewStatsService(a.Store, a.Mirror, a.Sync, cfg.Policy, clk, locks, queue)
	a.Students = services.NewStudentService(a.Store, a.Mirror, a.Stats, queue)
	a.Practice = services.NewPracticeService(a.Stats, clk)
	a.Attendance = services.NewAttendanceService(a.Stats, clk)
	a.Streak = services.NewStreakService(a.Stats, clk)
	a.Performance = services.NewPerformanceService(jsonfile.NewPerformanceStore(cfg.DataDir), a.Store, locks, clk)
	a.Leaderboard = services.NewLeaderboardService(a.Students, a.Stats, jsonfile.NewLeaderboardStore(cfg.DataDir), lbCache, clk)
	a.Reconcile = services.NewReconcileService(a.Store, a.Stats, a.Students, a.Sync, cfg.ReconcileConcurrency)

	if a.Queue != nil {
		a.Queue.Bind(a.Reconcile, a.Leaderboard)
	}
	if inline != nil {
		inline.Bind(a.Reconcile, a.Leaderboard, a.Leaderboard)
	}
	return a, nil
}

// Start runs the worker pools until ctx is cancelled or Close is called.
func (a *App) Start(ctx context.Context) {
	if a.reconcilePool != nil {
		a.reconcilePool.Start(ctx)
	}
	if a.leaderboardPool != nil {
		a.leaderboardPool.Start(ctx)
	}
}

// Server returns the HTTP API over this app's services.
func (a *App) Server() *api.Server {
	srv := &api.Server{
		StatsService:       a.Stats,
		StudentService:     a.Students,
		PracticeService:    a.Practice,
		AttendanceService:  a.Attendance,
		StreakService:      a.Streak,
		PerformanceService: a.Performance,
		LeaderboardService: a.Leaderboard,
		ReconcileService:   a.Reconcile,
		Policy:             a.Config.Policy,
	}
	if a.Queue != nil {
		srv.JobQueue = a.Queue
	}
	if a.Mirror != nil {
		srv.Mirror = a.Mirror
	}
	return srv
}

// Close stops the pools and releases connections.
func (a *App) Close() {
	log := logger.Default().WithPrefix("app")
	if a.reconcilePool != nil {
		a.reconcilePool.Stop()
	}
	if a.leaderboardPool != nil {
		a.leaderboardPool.Stop()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.Warn("failed to close redis client: %v", err)
		}
	}
	if a.DB != nil {
		log.Debug("closing database connection")
		if err := a.DB.Close(); err != nil {
			log.Warn("failed to close database: %v", err)
		}
	}
}
