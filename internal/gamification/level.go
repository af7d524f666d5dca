package gamification

import "github.com/vytor/drumdungeon/internal/models"

// RequiredXPForLevel is the XP needed to go from level to level+1.
func (p Policy) RequiredXPForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return p.LevelBaseXP + (level-1)*p.LevelIncrementXP
}

// XPForLevel is the cumulative XP at which level is first reached.
func (p Policy) XPForLevel(level int) int {
	total := 0
	for l := 1; l < level; l++ {
		total += p.RequiredXPForLevel(l)
	}
	return total
}

// Recalculate derives the level block from a total. Negative totals count as zero.
func (p Policy) Recalculate(totalXP int) models.Level {
	if totalXP < 0 {
		totalXP = 0
	}
	level := 1
	remaining := totalXP
	for remaining >= p.RequiredXPForLevel(level) {
		remaining -= p.RequiredXPForLevel(level)
		level++
	}
	return models.Level{
		Current:    level,
		ProgressXP: remaining,
		XPToNext:   p.RequiredXPForLevel(level) - remaining,
	}
}
