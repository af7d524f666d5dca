package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/drumdungeon/internal/db"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/repository"
	"github.com/vytor/drumdungeon/internal/repository/sqlstore"
	"github.com/vytor/drumdungeon/internal/testutil"
)

type MirrorRepositorySuite struct {
	suite.Suite
	db   *db.DB
	repo repository.MirrorRepository
}

func (s *MirrorRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlstore.NewMirrorRepository(s.db)
}

func (s *MirrorRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *MirrorRepositorySuite) count(table string) int {
	var n int
	s.Require().NoError(s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n))
	return n
}

func (s *MirrorRepositorySuite) seed(ctx context.Context, username string) int64 {
	var id int64
	err := s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		var err error
		id, err = tx.UpsertStudent(ctx, username, "Alice A.", "alice.png")
		if err != nil {
			return err
		}
		if err := tx.UpsertXP(ctx, id, models.XP{Total: 45, Categories: map[string]int{
			models.CategoryPadPractice: 5, models.CategoryAttendance: 40,
		}}, time.Date(2024, 5, 2, 18, 0, 0, 0, time.UTC)); err != nil {
			return err
		}
		if err := tx.UpsertStreak(ctx, id, models.Streak{Current: 1, Longest: 3, LastPracticeDate: models.MustParseDate("2024-05-02")}); err != nil {
			return err
		}
		for _, d := range []string{"2024-05-01", "2024-04-24"} {
			if err := tx.InsertAttendance(ctx, id, models.MustParseDate(d)); err != nil {
				return err
			}
		}
		grade := 8.5
		if err := tx.InsertHistoryEvent(ctx, id, models.HistoryEvent{Type: models.EventAttendance, Name: "Private Lesson", Date: models.MustParseDate("2024-05-01"), Grade: &grade}); err != nil {
			return err
		}
		if err := tx.InsertHistoryEvent(ctx, id, models.HistoryEvent{Type: models.EventPad, Name: "tarator", Date: models.MustParseDate("2024-05-02")}); err != nil {
			return err
		}
		if err := tx.InsertMedal(ctx, id, "streak_15"); err != nil {
			return err
		}
		return tx.InsertMilestone(ctx, id, "3_day")
	})
	s.Require().NoError(err)
	return id
}

func (s *MirrorRepositorySuite) TestUpsertStudent_IsStable() {
	ctx := context.Background()
	first := s.seed(ctx, "alice")

	var second int64
	err := s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		var err error
		second, err = tx.UpsertStudent(ctx, "alice", "Alice B.", "new.png")
		return err
	})
	s.Require().NoError(err)
	s.Assert().Equal(first, second)
	s.Assert().Equal(1, s.count("students"))

	stats, err := s.repo.LoadStats(ctx, "alice")
	s.Require().NoError(err)
	s.Assert().Equal("Alice B.", stats.Profile.Name)
}

func (s *MirrorRepositorySuite) TestLoadStats_RebuildsRecord() {
	ctx := context.Background()
	s.seed(ctx, "alice")

	stats, err := s.repo.LoadStats(ctx, "alice")
	s.Require().NoError(err)

	s.Assert().Equal("alice", stats.Student)
	s.Assert().Equal(45, stats.XP.Total)
	s.Assert().Equal(40, stats.XP.Categories[models.CategoryAttendance])
	s.Assert().Equal(3, stats.Streak.Longest)
	s.Assert().Equal("2024-05-02", stats.Streak.LastPracticeDate.String())
	s.Require().Len(stats.Attendance.Dates, 2)
	s.Assert().Equal("2024-04-24", stats.Attendance.Dates[0].String(), "ordered by date")
	s.Assert().Equal(2, stats.Attendance.LifetimeLessons)
	s.Require().Len(stats.History.Events, 2)
	s.Require().NotNil(stats.History.Events[0].Grade)
	s.Assert().Equal(8.5, *stats.History.Events[0].Grade)
	s.Assert().Nil(stats.History.Events[1].Grade)
	s.Assert().Equal([]string{"streak_15"}, stats.Medals)
	s.Assert().True(stats.Milestones["3_day"])
}

func (s *MirrorRepositorySuite) TestLoadStats_NotFound() {
	_, err := s.repo.LoadStats(context.Background(), "ghost")
	s.Assert().ErrorIs(err, repository.ErrNotFound)
}

func (s *MirrorRepositorySuite) TestInsertsIgnoreDuplicates() {
	ctx := context.Background()
	id := s.seed(ctx, "alice")

	err := s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		if err := tx.InsertAttendance(ctx, id, models.MustParseDate("2024-05-01")); err != nil {
			return err
		}
		if err := tx.InsertMedal(ctx, id, "streak_15"); err != nil {
			return err
		}
		return tx.InsertHistoryEvent(ctx, id, models.HistoryEvent{Type: models.EventPad, Name: "tarator", Date: models.MustParseDate("2024-05-02")})
	})
	s.Require().NoError(err)
	s.Assert().Equal(2, s.count("attendance"))
	s.Assert().Equal(1, s.count("student_medals"))
	s.Assert().Equal(2, s.count("history_events"))
}

func (s *MirrorRepositorySuite) TestExistingKeys() {
	ctx := context.Background()
	id := s.seed(ctx, "alice")

	err := s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		dates, err := tx.AttendanceDates(ctx, id)
		s.Require().NoError(err)
		s.Assert().True(dates["2024-05-01"])

		keys, err := tx.HistoryKeys(ctx, id)
		s.Require().NoError(err)
		s.Assert().True(keys[models.HistoryKey{Date: "2024-05-02", Type: models.EventPad, Name: "tarator"}])

		medals, err := tx.MedalIDs(ctx, id)
		s.Require().NoError(err)
		s.Assert().Len(medals, 1)
		return nil
	})
	s.Require().NoError(err)
}

func (s *MirrorRepositorySuite) TestWithTx_RollsBackOnError() {
	ctx := context.Background()
	err := s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		if _, err := tx.UpsertStudent(ctx, "bob", "Bob", models.DefaultAvatar); err != nil {
			return err
		}
		return repository.ErrNotFound
	})
	s.Assert().Error(err)
	s.Assert().Equal(0, s.count("students"))
}

func (s *MirrorRepositorySuite) TestListAndDelete() {
	ctx := context.Background()
	s.seed(ctx, "carol")
	s.seed(ctx, "alice")

	names, err := s.repo.ListStudents(ctx)
	s.Require().NoError(err)
	s.Assert().Equal([]string{"alice", "carol"}, names)

	s.Require().NoError(s.repo.DeleteStudent(ctx, "alice"))
	s.Assert().Equal(1, s.count("students"))
	s.Assert().Equal(2, s.count("attendance"))
	s.Assert().Equal(1, s.count("xp"))

	s.Assert().ErrorIs(s.repo.DeleteStudent(ctx, "alice"), repository.ErrNotFound)
}

func (s *MirrorRepositorySuite) upsertXP(id int64, xp models.XP, at time.Time) {
	ctx := context.Background()
	s.Require().NoError(s.repo.WithTx(ctx, func(tx repository.MirrorTx) error {
		return tx.UpsertXP(ctx, id, xp, at)
	}))
}

func (s *MirrorRepositorySuite) xpUpdatedAt(id int64) time.Time {
	var at time.Time
	s.Require().NoError(s.db.QueryRow(`SELECT updated_at FROM xp WHERE student_id = ?`, id).Scan(&at))
	return at
}

func (s *MirrorRepositorySuite) TestUpsertXP_UnchangedValuesKeepTimestamp() {
	id := s.seed(context.Background(), "alice")
	seeded := s.xpUpdatedAt(id)

	same := models.XP{Total: 45, Categories: map[string]int{
		models.CategoryPadPractice: 5, models.CategoryAttendance: 40, models.CategoryConsistency: 0,
	}}
	s.upsertXP(id, same, time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	s.Assert().True(seeded.Equal(s.xpUpdatedAt(id)), "identical totals must not touch the row")

	changed := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	same.Total = 50
	same.Categories[models.CategoryPadPractice] = 10
	s.upsertXP(id, same, changed)
	s.Assert().True(changed.Equal(s.xpUpdatedAt(id)))
}

func (s *MirrorRepositorySuite) TestUpsertXP_ExtraCategoriesRoundTrip() {
	ctx := context.Background()
	id := s.seed(ctx, "alice")
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	s.upsertXP(id, models.XP{Total: 195, Categories: map[string]int{
		models.CategoryPadPractice: 5, models.CategoryAttendance: 40, "legacy_bonus": 150,
	}}, at)
	s.Assert().Equal(1, s.count("xp_categories"))

	stats, err := s.repo.LoadStats(ctx, "alice")
	s.Require().NoError(err)
	s.Assert().Equal(195, stats.XP.Total)
	s.Assert().Equal(150, stats.XP.Categories["legacy_bonus"])

	s.upsertXP(id, models.XP{Total: 45, Categories: map[string]int{
		models.CategoryPadPractice: 5, models.CategoryAttendance: 40,
	}}, at)
	s.Assert().Equal(0, s.count("xp_categories"), "dropped categories are pruned")
}

func (s *MirrorRepositorySuite) TestExists() {
	ctx := context.Background()
	s.seed(ctx, "alice")

	ok, err := s.repo.Exists(ctx, "alice")
	s.Require().NoError(err)
	s.Assert().True(ok)

	ok, err = s.repo.Exists(ctx, "ghost")
	s.Require().NoError(err)
	s.Assert().False(ok)
}

func (s *MirrorRepositorySuite) TestDelete_RemovesExtraCategories() {
	ctx := context.Background()
	id := s.seed(ctx, "alice")
	s.upsertXP(id, models.XP{Total: 10, Categories: map[string]int{"legacy_bonus": 10}}, time.Now())

	s.Require().NoError(s.repo.DeleteStudent(ctx, "alice"))
	s.Assert().Equal(0, s.count("xp_categories"))
}

func (s *MirrorRepositorySuite) TestPing() {
	s.Assert().NoError(s.repo.Ping(context.Background()))
}

func TestMirrorRepositorySuite(t *testing.T) {
	suite.Run(t, new(MirrorRepositorySuite))
}
