package gamification

import "github.com/vytor/drumdungeon/internal/models"

// Credit adds amount to a category and re-derives the total and level.
func (p Policy) Credit(stats *models.StudentStats, category string, amount int) {
	if stats.XP.Categories == nil {
		stats.XP.Categories = map[string]int{}
	}
	stats.XP.Categories[category] += amount
	p.Recompute(stats)
}

// Recompute sets the total to the sum of categories and the level from the total.
// It reports whether either changed.
func (p Policy) Recompute(stats *models.StudentStats) bool {
	total := stats.SumCategories()
	level := p.Recalculate(total)
	changed := total != stats.XP.Total || level != stats.Level
	stats.XP.Total = total
	stats.Level = level
	return changed
}

// Prepare brings a freshly loaded record into shape: storage key, missing
// blocks, milestone flags, then derived totals and level. It reports whether
// anything differed from what was stored.
func (p Policy) Prepare(stats *models.StudentStats, username string) bool {
	changed := false
	if stats.Student == "" {
		stats.Student = username
		changed = true
	}
	if stats.Normalize() {
		changed = true
	}
	if stats.EnsureMilestones(p.MilestoneKeys()) {
		changed = true
	}
	if p.Recompute(stats) {
		changed = true
	}
	return changed
}
