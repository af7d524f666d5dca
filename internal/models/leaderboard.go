package models

import "time"

type LeaderboardEntry struct {
	Rank        int      `json:"rank"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Avatar      string   `json:"avatar"`
	Level       int      `json:"level"`
	XPTotal     int      `json:"xp_total"`
	Streak      int      `json:"streak"`
	Medals      []string `json:"medals"`
}

type Leaderboard struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Students    []LeaderboardEntry `json:"students"`
}

// NewLeaderboardEntry projects a stats record onto a leaderboard row. Rank is assigned by the caller.
func NewLeaderboardEntry(s *StudentStats) LeaderboardEntry {
	name := s.Profile.Name
	if name == "" {
		name = s.Student
	}
	return LeaderboardEntry{
		Username:    s.Student,
		DisplayName: name,
		Avatar:      s.Profile.Avatar,
		Level:       s.Level.Current,
		XPTotal:     s.XP.Total,
		Streak:      s.Streak.Current,
		Medals:      append([]string(nil), s.Medals...),
	}
}
