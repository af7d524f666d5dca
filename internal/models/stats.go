package models

import "time"

// XP categories. The total is always the sum of every category present.
const (
	CategoryPadPractice = "pad_practice"
	CategoryAttendance  = "attendance"
	CategoryConsistency = "consistency"
)

// KnownCategories lists the categories mirrored to the relational store.
var KnownCategories = []string{CategoryPadPractice, CategoryAttendance, CategoryConsistency}

// History event types.
const (
	EventPad        = "pad"
	EventAttendance = "attendance"
)

// DefaultAvatar is assigned to students enrolled without one.
const DefaultAvatar = "default.png"

// StudentStats is the per-student record persisted as stats.json and mirrored to SQL.
type StudentStats struct {
	Student    string          `json:"student"`
	Profile    Profile         `json:"profile"`
	XP         XP              `json:"xp"`
	Level      Level           `json:"level"`
	Streak     Streak          `json:"streak"`
	Attendance Attendance      `json:"attendance"`
	Milestones map[string]bool `json:"milestones"`
	Medals     []string        `json:"medals"`
	History    History         `json:"history"`
}

type XP struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
}

type Level struct {
	Current    int `json:"current"`
	ProgressXP int `json:"progress_xp"`
	XPToNext   int `json:"xp_to_next"`
}

type Streak struct {
	Current          int  `json:"current"`
	Longest          int  `json:"longest"`
	LastPracticeDate Date `json:"last_practice_date"`
}

type Attendance struct {
	LifetimeLessons int          `json:"lifetime_lessons"`
	Dates           []Date       `json:"dates"`
	CurrentMonth    CurrentMonth `json:"current_month"`
}

// CurrentMonth tracks lessons within one calendar month for the consistency bonus.
type CurrentMonth struct {
	Month        string `json:"month,omitempty"`
	Count        int    `json:"count"`
	BonusAwarded bool   `json:"bonus_awarded"`
}

type History struct {
	Events      []HistoryEvent `json:"events"`
	LastXPEvent string         `json:"last_xp_event,omitempty"`
	LastUpdated *time.Time     `json:"last_updated"`
}

type HistoryEvent struct {
	Type  string   `json:"type"`
	Name  string   `json:"name"`
	Date  Date     `json:"date"`
	Grade *float64 `json:"grade,omitempty"`
}

// Key returns the natural key used to deduplicate mirrored history rows.
func (e HistoryEvent) Key() HistoryKey {
	return HistoryKey{Date: e.Date.String(), Type: e.Type, Name: e.Name}
}

// HistoryKey identifies a history event for a given student.
type HistoryKey struct {
	Date string
	Type string
	Name string
}

// NewStudentStats returns the enrollment record: everything zeroed, level 1.
func NewStudentStats(username string, firstLevelCost int) *StudentStats {
	s := &StudentStats{
		Student: username,
		Profile: Profile{Name: username, Avatar: DefaultAvatar},
		Level:   Level{Current: 1, XPToNext: firstLevelCost},
	}
	s.Normalize()
	return s
}

// SumCategories returns the sum of every XP category.
func (s *StudentStats) SumCategories() int {
	total := 0
	for _, v := range s.XP.Categories {
		total += v
	}
	return total
}
