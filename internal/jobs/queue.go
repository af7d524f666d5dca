package jobs

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueReconcile(username string) error
	EnqueueReconcileAll() error
	EnqueueLeaderboard() error
}
