package models

// Difficulty buckets derived from the BPM reached at the end of a session.
const (
	DifficultyEasy         = "easy"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

type PerformanceEntry struct {
	Date       Date   `json:"date"`
	StartBPM   int    `json:"start_bpm"`
	EndBPM     int    `json:"end_bpm"`
	Difficulty string `json:"difficulty"`
}

// Increase is the BPM gained during the session.
func (e PerformanceEntry) Increase() int {
	return e.EndBPM - e.StartBPM
}

// PerformanceLog maps an exercise id to its sessions in the order they were logged.
type PerformanceLog map[string][]PerformanceEntry

// DifficultyFor buckets an end BPM: up to 90 is easy, up to 140 intermediate.
func DifficultyFor(endBPM int) string {
	switch {
	case endBPM <= 90:
		return DifficultyEasy
	case endBPM <= 140:
		return DifficultyIntermediate
	default:
		return DifficultyAdvanced
	}
}

type AverageIncrease struct {
	Exercise string  `json:"exercise"`
	Sessions int     `json:"sessions"`
	Average  float64 `json:"average_increase"`
}

type BestSession struct {
	Exercise string           `json:"exercise"`
	Entry    PerformanceEntry `json:"entry"`
}

// DifficultyUsage counts sessions per difficulty across every exercise, and
// how often consecutive sessions of one exercise moved between difficulties
// (keyed "from->to").
type DifficultyUsage struct {
	Counts      map[string]int `json:"counts"`
	Transitions map[string]int `json:"transitions"`
}
