package jobs

import (
	"context"

	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/worker"
)

// LeaderboardInvalidator drops a published leaderboard.
type LeaderboardInvalidator interface {
	Invalidate(ctx context.Context) error
}

// InlineQueue implements JobQueue for processes without worker pools, such as
// the admin CLI. Reconciles run on the caller's goroutine. A leaderboard
// refresh only invalidates the shared cache; the next read rebuilds it.
type InlineQueue struct {
	reconciler  worker.Reconciler
	leaderboard worker.LeaderboardGenerator
	invalidator LeaderboardInvalidator
}

func NewInlineQueue() *InlineQueue {
	return &InlineQueue{}
}

// Bind sets the services the queue calls.
func (q *InlineQueue) Bind(reconciler worker.Reconciler, leaderboard worker.LeaderboardGenerator, invalidator LeaderboardInvalidator) {
	q.reconciler = reconciler
	q.leaderboard = leaderboard
	q.invalidator = invalidator
}

func (q *InlineQueue) EnqueueReconcile(username string) error {
	job := &worker.ReconcileStudentJob{Reconciler: q.reconciler, Username: username}
	return job.Run(context.Background())
}

func (q *InlineQueue) EnqueueReconcileAll() error {
	job := &worker.ReconcileAllJob{Reconciler: q.reconciler, Leaderboard: q.leaderboard}
	return job.Run(context.Background())
}

func (q *InlineQueue) EnqueueLeaderboard() error {
	if q.invalidator == nil {
		return nil
	}
	ctx := context.Background()
	logger.FromContext(ctx).WithPrefix("jobs").Debug("invalidating cached leaderboard")
	return q.invalidator.Invalidate(ctx)
}
