package gamification

import (
	"sort"

	"github.com/vytor/drumdungeon/internal/models"
)

// EvaluateMedals adds every medal whose threshold is met by the current streak
// or level and returns the ids that were new. Medals are never removed.
func (p Policy) EvaluateMedals(stats *models.StudentStats) []string {
	have := make(map[string]bool, len(stats.Medals))
	for _, m := range stats.Medals {
		have[m] = true
	}

	var awarded []string
	check := func(value int, table []MedalThreshold) {
		for _, t := range sortedThresholds(table) {
			if value < t.Value {
				break
			}
			if !have[t.Medal] {
				have[t.Medal] = true
				awarded = append(awarded, t.Medal)
			}
		}
	}
	check(stats.Streak.Current, p.StreakMedals)
	check(stats.Level.Current, p.LevelMedals)

	if len(awarded) > 0 {
		stats.Medals = append(stats.Medals, awarded...)
		sort.Strings(stats.Medals)
	}
	return awarded
}
