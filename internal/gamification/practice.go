package gamification

import (
	"time"

	"github.com/vytor/drumdungeon/internal/models"
)

// LastEventStreak marks a record last touched by a streak check-in.
const LastEventStreak = "streak"

// ApplyPractice credits one completed exercise worth reward XP on today.
func (p Policy) ApplyPractice(stats *models.StudentStats, exerciseID string, reward int, today models.Date, now time.Time) models.PracticeResult {
	before := stats.XP.Total
	p.Credit(stats, models.CategoryPadPractice, reward)

	advanced := AdvanceStreak(stats, today)
	if advanced && p.MilestonesOnPractice {
		p.AwardMilestones(stats)
	}

	newMedals := p.EvaluateMedals(stats)

	stats.History.Events = append(stats.History.Events, models.HistoryEvent{
		Type: models.EventPad,
		Name: exerciseID,
		Date: today,
	})
	touch(stats, models.CategoryPadPractice, now)

	return models.PracticeResult{
		Exercise:       exerciseID,
		XPAwarded:      stats.XP.Total - before,
		TotalXP:        stats.XP.Total,
		Level:          stats.Level.Current,
		Streak:         stats.Streak.Current,
		StreakAdvanced: advanced,
		NewMedals:      newMedals,
	}
}

// CheckIn advances the streak for today without an exercise and, when it
// moved, pays out milestone bonuses.
func (p Policy) CheckIn(stats *models.StudentStats, today models.Date, now time.Time) models.CheckInResult {
	if !AdvanceStreak(stats, today) {
		return models.CheckInResult{Streak: stats.Streak.Current}
	}
	bonus := p.AwardMilestones(stats)
	p.Recompute(stats)
	p.EvaluateMedals(stats)
	touch(stats, LastEventStreak, now)
	return models.CheckInResult{Advanced: true, Streak: stats.Streak.Current, Bonus: bonus}
}
