package models

type Exercise struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Tier        string `json:"tier"`
	XP          int    `json:"xp"`
}

type Tier struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Medal pairs a medal id with its display label.
type Medal struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Results returned to callers of the event processors.

type PracticeResult struct {
	Exercise       string   `json:"exercise"`
	XPAwarded      int      `json:"xp_awarded"`
	TotalXP        int      `json:"total_xp"`
	Level          int      `json:"level"`
	Streak         int      `json:"streak"`
	StreakAdvanced bool     `json:"streak_advanced"`
	NewMedals      []string `json:"new_medals"`
}

type AttendanceResult struct {
	Date         Date     `json:"date"`
	XPAwarded    int      `json:"xp_awarded"`
	BonusAwarded bool     `json:"bonus_awarded"`
	TotalXP      int      `json:"total_xp"`
	Level        int      `json:"level"`
	NewMedals    []string `json:"new_medals"`
}

type CheckInResult struct {
	Advanced bool `json:"advanced"`
	Streak   int  `json:"streak"`
	Bonus    int  `json:"bonus"`
}

type ReconcileReport struct {
	Students       int      `json:"students"`
	Changed        int      `json:"changed"`
	MirrorFailures int      `json:"mirror_failures"`
	Failed         []string `json:"failed,omitempty"`
}
