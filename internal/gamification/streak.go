package gamification

import "github.com/vytor/drumdungeon/internal/models"

// AdvanceStreak counts today as a practice day. It reports whether the streak
// moved; a second call for the same day, or a day before the last practice, is a no-op.
func AdvanceStreak(stats *models.StudentStats, today models.Date) bool {
	s := &stats.Streak
	if s.LastPracticeDate.IsZero() {
		s.Current = 1
	} else {
		delta := today.DaysSince(s.LastPracticeDate)
		switch {
		case delta <= 0:
			return false
		case delta == 1:
			s.Current++
		default:
			s.Current = 1
		}
	}
	s.LastPracticeDate = today
	if s.Current > s.Longest {
		s.Longest = s.Current
	}
	return true
}

// ValidateStreak decays the current streak to zero once a full day has been
// missed. It reports whether the record changed and must be persisted.
func ValidateStreak(stats *models.StudentStats, today models.Date) bool {
	s := &stats.Streak
	if s.LastPracticeDate.IsZero() {
		return false
	}
	if today.DaysSince(s.LastPracticeDate) > 1 && s.Current != 0 {
		s.Current = 0
		return true
	}
	return false
}

// AwardMilestones grants the one-time bonus for the exact streak length and
// the daily bonus past the last milestone. Credited XP lands in consistency.
func (p Policy) AwardMilestones(stats *models.StudentStats) int {
	stats.EnsureMilestones(p.MilestoneKeys())

	current := stats.Streak.Current
	bonus := 0
	for _, m := range p.Milestones {
		if current != m.Days || stats.Milestones[m.Key()] {
			continue
		}
		stats.Milestones[m.Key()] = true
		bonus += m.XP
	}
	if p.DailyBonusAfterDays > 0 && current > p.DailyBonusAfterDays {
		bonus += p.DailyBonusXP
	}
	if bonus > 0 {
		p.Credit(stats, models.CategoryConsistency, bonus)
	}
	return bonus
}
