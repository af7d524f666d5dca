package gamification

import (
	"time"

	"github.com/vytor/drumdungeon/internal/models"
)

// AttendanceLessonName is the history label for an attended private lesson.
const AttendanceLessonName = "Private Lesson"

// ApplyAttendance records one attended lesson on date. Duplicate dates are
// counted again.
func (p Policy) ApplyAttendance(stats *models.StudentStats, date models.Date, grade *float64, now time.Time) models.AttendanceResult {
	att := &stats.Attendance
	month := date.Month()
	if att.CurrentMonth.Month != month {
		att.CurrentMonth = models.CurrentMonth{Month: month}
	}

	att.LifetimeLessons++
	att.CurrentMonth.Count++
	att.Dates = append(att.Dates, date)

	before := stats.XP.Total
	p.Credit(stats, models.CategoryAttendance, p.AttendanceXP)

	bonus := false
	if att.CurrentMonth.Count >= p.MonthlyBonusThreshold && !att.CurrentMonth.BonusAwarded {
		p.Credit(stats, models.CategoryConsistency, p.MonthlyBonusXP)
		att.CurrentMonth.BonusAwarded = true
		bonus = true
	}

	newMedals := p.EvaluateMedals(stats)

	var g *float64
	if grade != nil {
		v := *grade
		g = &v
	}
	stats.History.Events = append(stats.History.Events, models.HistoryEvent{
		Type:  models.EventAttendance,
		Name:  AttendanceLessonName,
		Date:  date,
		Grade: g,
	})
	touch(stats, models.CategoryAttendance, now)

	return models.AttendanceResult{
		Date:         date,
		XPAwarded:    stats.XP.Total - before,
		BonusAwarded: bonus,
		TotalXP:      stats.XP.Total,
		Level:        stats.Level.Current,
		NewMedals:    newMedals,
	}
}

func touch(stats *models.StudentStats, event string, now time.Time) {
	ts := now.UTC()
	stats.History.LastXPEvent = event
	stats.History.LastUpdated = &ts
}

// RebuildCurrentMonth derives the monthly counter block from attendance dates,
// for records recovered from a store that does not keep it.
func (p Policy) RebuildCurrentMonth(stats *models.StudentStats) {
	var latest models.Date
	for _, d := range stats.Attendance.Dates {
		if latest.IsZero() || latest.Before(d) {
			latest = d
		}
	}
	if latest.IsZero() {
		stats.Attendance.CurrentMonth = models.CurrentMonth{}
		return
	}
	month := latest.Month()
	count := 0
	for _, d := range stats.Attendance.Dates {
		if d.Month() == month {
			count++
		}
	}
	stats.Attendance.CurrentMonth = models.CurrentMonth{
		Month:        month,
		Count:        count,
		BonusAwarded: count >= p.MonthlyBonusThreshold,
	}
}
