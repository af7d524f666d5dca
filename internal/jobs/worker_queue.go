package jobs

import (
	"github.com/vytor/drumdungeon/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	reconcilePool   *worker.Pool
	leaderboardPool *worker.Pool
	reconciler      worker.Reconciler
	leaderboard     worker.LeaderboardGenerator
}

// NewWorkerQueue creates a new WorkerQueue implementation. Leaderboard jobs get
// their own pool so a long batch reconcile cannot starve them.
func NewWorkerQueue(
	reconcilePool *worker.Pool,
	leaderboardPool *worker.Pool,
	reconciler worker.Reconciler,
	leaderboard worker.LeaderboardGenerator,
) *WorkerQueue {
	return &WorkerQueue{
		reconcilePool:   reconcilePool,
		leaderboardPool: leaderboardPool,
		reconciler:      reconciler,
		leaderboard:     leaderboard,
	}
}

// Bind sets the services the jobs call. The services themselves take the
// queue, so they are wired after construction.
func (q *WorkerQueue) Bind(reconciler worker.Reconciler, leaderboard worker.LeaderboardGenerator) {
	q.reconciler = reconciler
	q.leaderboard = leaderboard
}

func (q *WorkerQueue) EnqueueReconcile(username string) error {
	return q.reconcilePool.Submit(&worker.ReconcileStudentJob{
		Reconciler: q.reconciler,
		Username:   username,
	})
}

func (q *WorkerQueue) EnqueueReconcileAll() error {
	return q.reconcilePool.Submit(&worker.ReconcileAllJob{
		Reconciler:  q.reconciler,
		Leaderboard: q.leaderboard,
	})
}

func (q *WorkerQueue) EnqueueLeaderboard() error {
	return q.leaderboardPool.Submit(&worker.GenerateLeaderboardJob{
		Leaderboard: q.leaderboard,
	})
}
