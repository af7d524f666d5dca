package worker

import (
	"context"

	"github.com/vytor/drumdungeon/internal/logger"
	"github.com/vytor/drumdungeon/internal/models"
)

// Reconciler is the slice of the reconcile service the jobs need.
// Declared here so this package does not import services.
type Reconciler interface {
	ReconcileStudent(ctx context.Context, username string) (bool, error)
	ReconcileAll(ctx context.Context) (*models.ReconcileReport, error)
}

// LeaderboardGenerator rebuilds and publishes the leaderboard.
type LeaderboardGenerator interface {
	Generate(ctx context.Context) (*models.Leaderboard, error)
}

type ReconcileStudentJob struct {
	Reconciler Reconciler
	Username   string
}

func (j *ReconcileStudentJob) Name() string { return "reconcile_student" }

func (j *ReconcileStudentJob) Run(ctx context.Context) error {
	changed, err := j.Reconciler.ReconcileStudent(ctx, j.Username)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).WithField("student", j.Username).Debug("reconciled: changed=%t", changed)
	return nil
}

// ReconcileAllJob reconciles every student and then refreshes the leaderboard.
type ReconcileAllJob struct {
	Reconciler  Reconciler
	Leaderboard LeaderboardGenerator
}

func (j *ReconcileAllJob) Name() string { return "reconcile_all" }

func (j *ReconcileAllJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	report, err := j.Reconciler.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	log.Info("batch reconcile: students=%d changed=%d mirror_failures=%d",
		report.Students, report.Changed, report.MirrorFailures)

	if j.Leaderboard == nil {
		return nil
	}
	_, err = j.Leaderboard.Generate(ctx)
	return err
}

type GenerateLeaderboardJob struct {
	Leaderboard LeaderboardGenerator
}

func (j *GenerateLeaderboardJob) Name() string { return "generate_leaderboard" }

func (j *GenerateLeaderboardJob) Run(ctx context.Context) error {
	_, err := j.Leaderboard.Generate(ctx)
	return err
}
