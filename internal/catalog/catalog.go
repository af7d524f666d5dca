// Package catalog holds the daily pad exercises students can complete.
package catalog

import "github.com/vytor/drumdungeon/internal/models"

const (
	TierBeginner     = "beginner"
	TierIntermediate = "intermediate"
)

var tiers = []models.Tier{
	{
		Name: TierBeginner,
		Exercises: []models.Exercise{
			{ID: "rudimental_warmup", Name: "Rudimental Warmup", Description: "Full rudiment flow, even strokes", XP: 5},
			{ID: "rebound_control", Name: "Rebound Control", Description: "Relaxed grip, rebound awareness", XP: 5},
			{ID: "burst_16ths", Name: "Burst of 16ths", Description: "Fast 16ths in short controlled bursts", XP: 5},
			{ID: "three_over_four", Name: "3 Over 4 Figure", Description: "Polyrhythm coordination exercise", XP: 5},
		},
	},
	{
		Name: TierIntermediate,
		Exercises: []models.Exercise{
			{ID: "rudimental_dynamics", Name: "Rudimental Warmup with Dynamics", Description: "Accent control and dynamic contrast", XP: 10},
			{ID: "tarator", Name: "Tarator", Description: "Hand-to-hand pattern with stamina focus", XP: 10},
			{ID: "burst_16ths_dynamics", Name: "Burst of 16ths with Dynamics", Description: "Speed bursts with controlled accents", XP: 10},
			{ID: "paraparadiddle_combo", Name: "Paraparadiddle Combo", Description: "Extended paradiddle coordination combo", XP: 10},
		},
	},
}

var byID = func() map[string]models.Exercise {
	m := make(map[string]models.Exercise)
	for _, t := range tiers {
		for _, e := range t.Exercises {
			e.Tier = t.Name
			m[e.ID] = e
		}
	}
	return m
}()

// Lookup finds an exercise by id.
func Lookup(id string) (models.Exercise, bool) {
	e, ok := byID[id]
	return e, ok
}

// Reward returns the XP for id, or fallback when the exercise is unknown.
func Reward(id string, fallback int) int {
	if e, ok := byID[id]; ok {
		return e.XP
	}
	return fallback
}

// Tiers returns a copy of the catalog grouped by difficulty.
func Tiers() []models.Tier {
	out := make([]models.Tier, len(tiers))
	for i, t := range tiers {
		exercises := make([]models.Exercise, len(t.Exercises))
		for j, e := range t.Exercises {
			e.Tier = t.Name
			exercises[j] = e
		}
		out[i] = models.Tier{Name: t.Name, Exercises: exercises}
	}
	return out
}

// All returns every exercise in catalog order.
func All() []models.Exercise {
	var out []models.Exercise
	for _, t := range Tiers() {
		out = append(out, t.Exercises...)
	}
	return out
}
