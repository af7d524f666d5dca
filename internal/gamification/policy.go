// Package gamification turns practice and attendance events into XP, levels,
// streaks and medals. Everything here is pure: callers load, persist and lock.
package gamification

import (
	"errors"
	"fmt"
	"sort"
)

// Milestone grants XP the first time a streak reaches exactly Days.
type Milestone struct {
	Days int
	XP   int
}

// Key is the flag name stored in StudentStats.Milestones.
func (m Milestone) Key() string {
	return MilestoneKey(m.Days)
}

func MilestoneKey(days int) string {
	return fmt.Sprintf("%d_day", days)
}

// MedalThreshold awards Medal once the tracked value reaches Value.
type MedalThreshold struct {
	Value int
	Medal string
	Label string
}

// Policy holds every tunable reward and threshold.
type Policy struct {
	LevelBaseXP           int
	LevelIncrementXP      int
	AttendanceXP          int
	MonthlyBonusXP        int
	MonthlyBonusThreshold int
	DefaultExerciseXP     int

	Milestones           []Milestone
	DailyBonusAfterDays  int
	DailyBonusXP         int
	MilestonesOnPractice bool

	StreakMedals []MedalThreshold
	LevelMedals  []MedalThreshold
}

func DefaultPolicy() Policy {
	return Policy{
		LevelBaseXP:           100,
		LevelIncrementXP:      25,
		AttendanceXP:          20,
		MonthlyBonusXP:        10,
		MonthlyBonusThreshold: 4,
		DefaultExerciseXP:     5,
		Milestones: []Milestone{
			{Days: 3, XP: 15},
			{Days: 7, XP: 15},
			{Days: 15, XP: 15},
			{Days: 30, XP: 15},
			{Days: 45, XP: 15},
			{Days: 60, XP: 35},
		},
		DailyBonusAfterDays: 60,
		DailyBonusXP:        5,
		StreakMedals: []MedalThreshold{
			{Value: 15, Medal: "streak_15", Label: "Disciplined novice"},
			{Value: 30, Medal: "streak_30", Label: "Doesn't miss"},
			{Value: 60, Medal: "streak_60", Label: "Habit monster"},
		},
		LevelMedals: []MedalThreshold{
			{Value: 5, Medal: "level_5", Label: "4 on the floor"},
			{Value: 10, Medal: "level_10", Label: "Groovin"},
			{Value: 15, Medal: "level_15", Label: "Beat killer"},
			{Value: 20, Medal: "level_20", Label: "Chops, chops, chops!"},
			{Value: 30, Medal: "level_30", Label: "Lean, mean drum machine!"},
		},
	}
}

// Validate rejects policies that would break the level loop or hand out negative XP.
func (p Policy) Validate() error {
	var errs []error
	if p.LevelBaseXP <= 0 {
		errs = append(errs, fmt.Errorf("level base xp must be positive, got %d", p.LevelBaseXP))
	}
	if p.LevelIncrementXP < 0 {
		errs = append(errs, fmt.Errorf("level increment xp must not be negative, got %d", p.LevelIncrementXP))
	}
	for name, v := range map[string]int{
		"attendance xp":           p.AttendanceXP,
		"monthly bonus xp":        p.MonthlyBonusXP,
		"monthly bonus threshold": p.MonthlyBonusThreshold,
		"default exercise xp":     p.DefaultExerciseXP,
		"daily bonus xp":          p.DailyBonusXP,
	} {
		if v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", name, v))
		}
	}
	for _, m := range p.Milestones {
		if m.Days <= 0 || m.XP < 0 {
			errs = append(errs, fmt.Errorf("invalid milestone %d days / %d xp", m.Days, m.XP))
		}
	}
	return errors.Join(errs...)
}

// MilestoneKeys returns the flag names for every configured milestone.
func (p Policy) MilestoneKeys() []string {
	keys := make([]string, 0, len(p.Milestones))
	for _, m := range p.Milestones {
		keys = append(keys, m.Key())
	}
	return keys
}

// Medals lists every medal the policy can award, streak medals first.
func (p Policy) Medals() []MedalThreshold {
	out := make([]MedalThreshold, 0, len(p.StreakMedals)+len(p.LevelMedals))
	out = append(out, p.StreakMedals...)
	out = append(out, p.LevelMedals...)
	return out
}

// MedalLabels maps medal id to display name.
func (p Policy) MedalLabels() map[string]string {
	labels := make(map[string]string, len(p.StreakMedals)+len(p.LevelMedals))
	for _, m := range p.Medals() {
		labels[m.Medal] = m.Label
	}
	return labels
}

func sortedThresholds(in []MedalThreshold) []MedalThreshold {
	out := append([]MedalThreshold(nil), in...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}
