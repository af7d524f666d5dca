package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
)

type mirrorTx struct {
	tx      *sql.Tx
	sb      squirrel.StatementBuilderType
	dialect db.Dialect
}

func (m *mirrorTx) exec(ctx context.Context, q squirrel.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return err
	}
	_, err = m.tx.ExecContext(ctx, query, args...)
	return err
}

func (m *mirrorTx) UpsertStudent(ctx context.Context, username, displayName, avatar string) (int64, error) {
	insert := m.sb.Insert("students").
		Columns("username", "display_name", "avatar").
		Values(username, displayName, avatar).
		Suffix(m.dialect.UpsertSuffix([]string{"username"}, []string{"display_name", "avatar"}))
	if err := m.exec(ctx, insert); err != nil {
		return 0, fmt.Errorf("upsert student: %w", err)
	}
	return studentID(ctx, m.tx, m.sb, username)
}

// UpsertXP writes the totals and every category. A stored row already holding
// the same values is left untouched, so replaying a snapshot changes nothing.
func (m *mirrorTx) UpsertXP(ctx context.Context, studentID int64, xp models.XP, updatedAt time.Time) error {
	current, found, err := m.storedXP(ctx, studentID)
	if err != nil {
		return fmt.Errorf("read xp: %w", err)
	}
	if found && sameXP(current, xp) {
		return nil
	}

	insert := m.sb.Insert("xp").
		Columns("student_id", "total", "pad_practice", "attendance", "consistency", "updated_at").
		Values(studentID, xp.Total,
			xp.Categories[models.CategoryPadPractice],
			xp.Categories[models.CategoryAttendance],
			xp.Categories[models.CategoryConsistency],
			updatedAt.UTC()).
		Suffix(m.dialect.UpsertSuffix([]string{"student_id"}, []string{"total", "pad_practice", "attendance", "consistency", "updated_at"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("upsert xp: %w", err)
	}

	extras := extraCategories(xp.Categories)
	for _, name := range extras {
		insert := m.sb.Insert("xp_categories").
			Columns("student_id", "category", "amount").
			Values(studentID, name, xp.Categories[name]).
			Suffix(m.dialect.UpsertSuffix([]string{"student_id", "category"}, []string{"amount"}))
		if err := m.exec(ctx, insert); err != nil {
			return fmt.Errorf("upsert xp category %s: %w", name, err)
		}
	}
	stale := m.sb.Delete("xp_categories").
		Where(squirrel.Eq{"student_id": studentID}).
		Where(squirrel.NotEq{"category": extras})
	if err := m.exec(ctx, stale); err != nil {
		return fmt.Errorf("prune xp categories: %w", err)
	}
	return nil
}

// storedXP reads the xp row and any extra categories. found is false when the
// student has no xp row yet.
func (m *mirrorTx) storedXP(ctx context.Context, studentID int64) (models.XP, bool, error) {
	xp := models.XP{Categories: make(map[string]int, len(models.KnownCategories))}

	query, args, err := m.sb.Select("total", "pad_practice", "attendance", "consistency").
		From("xp").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return xp, false, err
	}
	var pad, attendance, consistency int
	err = m.tx.QueryRowContext(ctx, query, args...).Scan(&xp.Total, &pad, &attendance, &consistency)
	if errors.Is(err, sql.ErrNoRows) {
		return xp, false, nil
	}
	if err != nil {
		return xp, false, err
	}
	xp.Categories[models.CategoryPadPractice] = pad
	xp.Categories[models.CategoryAttendance] = attendance
	xp.Categories[models.CategoryConsistency] = consistency

	query, args, err = m.sb.Select("category", "amount").
		From("xp_categories").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return xp, false, err
	}
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return xp, false, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name   string
			amount int
		)
		if err := rows.Scan(&name, &amount); err != nil {
			return xp, false, err
		}
		xp.Categories[name] = amount
	}
	return xp, true, rows.Err()
}

func (m *mirrorTx) UpsertStreak(ctx context.Context, studentID int64, streak models.Streak) error {
	insert := m.sb.Insert("streaks").
		Columns("student_id", "current_streak", "longest_streak", "last_practice_date").
		Values(studentID, streak.Current, streak.Longest, streak.LastPracticeDate).
		Suffix(m.dialect.UpsertSuffix([]string{"student_id"}, []string{"current_streak", "longest_streak", "last_practice_date"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("upsert streak: %w", err)
	}
	return nil
}

func (m *mirrorTx) AttendanceDates(ctx context.Context, studentID int64) (map[string]bool, error) {
	dates, err := m.attendanceList(ctx, studentID)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(dates))
	for _, d := range dates {
		existing[d.String()] = true
	}
	return existing, nil
}

func (m *mirrorTx) attendanceList(ctx context.Context, studentID int64) ([]models.Date, error) {
	query, args, err := m.sb.Select("lesson_date").From("attendance").
		Where(squirrel.Eq{"student_id": studentID}).OrderBy("lesson_date ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := []models.Date{}
	for rows.Next() {
		var d models.Date
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (m *mirrorTx) InsertAttendance(ctx context.Context, studentID int64, date models.Date) error {
	insert := m.sb.Insert("attendance").
		Columns("student_id", "lesson_date").
		Values(studentID, date).
		Suffix(m.dialect.InsertIgnoreSuffix([]string{"student_id", "lesson_date"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert attendance %s: %w", date, err)
	}
	return nil
}

func (m *mirrorTx) HistoryKeys(ctx context.Context, studentID int64) (map[models.HistoryKey]bool, error) {
	events, err := m.historyList(ctx, studentID)
	if err != nil {
		return nil, err
	}
	keys := make(map[models.HistoryKey]bool, len(events))
	for _, ev := range events {
		keys[ev.Key()] = true
	}
	return keys, nil
}

func (m *mirrorTx) historyList(ctx context.Context, studentID int64) ([]models.HistoryEvent, error) {
	query, args, err := m.sb.Select("event_type", "event_name", "event_date", "grade").From("history_events").
		Where(squirrel.Eq{"student_id": studentID}).OrderBy("event_date ASC", "id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.HistoryEvent{}
	for rows.Next() {
		var (
			ev    models.HistoryEvent
			grade sql.NullFloat64
		)
		if err := rows.Scan(&ev.Type, &ev.Name, &ev.Date, &grade); err != nil {
			return nil, err
		}
		if grade.Valid {
			g := grade.Float64
			ev.Grade = &g
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (m *mirrorTx) InsertHistoryEvent(ctx context.Context, studentID int64, event models.HistoryEvent) error {
	insert := m.sb.Insert("history_events").
		Columns("student_id", "event_type", "event_name", "event_date", "grade").
		Values(studentID, event.Type, event.Name, event.Date, event.Grade).
		Suffix(m.dialect.InsertIgnoreSuffix([]string{"student_id", "event_date", "event_type", "event_name"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert history event %s/%s: %w", event.Type, event.Name, err)
	}
	return nil
}

func (m *mirrorTx) MedalIDs(ctx context.Context, studentID int64) (map[string]bool, error) {
	return m.stringSet(ctx, "student_medals", "medal", studentID)
}

func (m *mirrorTx) InsertMedal(ctx context.Context, studentID int64, medal string) error {
	insert := m.sb.Insert("student_medals").
		Columns("student_id", "medal").
		Values(studentID, medal).
		Suffix(m.dialect.InsertIgnoreSuffix([]string{"student_id", "medal"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert medal %s: %w", medal, err)
	}
	return nil
}

func (m *mirrorTx) MilestoneKeys(ctx context.Context, studentID int64) (map[string]bool, error) {
	return m.stringSet(ctx, "student_milestones", "milestone", studentID)
}

func (m *mirrorTx) InsertMilestone(ctx context.Context, studentID int64, key string) error {
	insert := m.sb.Insert("student_milestones").
		Columns("student_id", "milestone").
		Values(studentID, key).
		Suffix(m.dialect.InsertIgnoreSuffix([]string{"student_id", "milestone"}))
	if err := m.exec(ctx, insert); err != nil {
		return fmt.Errorf("insert milestone %s: %w", key, err)
	}
	return nil
}

func (m *mirrorTx) stringSet(ctx context.Context, table, column string, studentID int64) (map[string]bool, error) {
	query, args, err := m.sb.Select(column).From(table).Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := m.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := map[string]bool{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		set[v] = true
	}
	return set, rows.Err()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func studentID(ctx context.Context, q queryRower, sb squirrel.StatementBuilderType, username string) (int64, error) {
	query, args, err := sb.Select("id").From("students").Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return 0, err
	}
	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("student %s: %w", username, repository.ErrNotFound)
		}
		return 0, err
	}
	return id, nil
}
