package main

import (
	"context"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/vytor/drumdungeon/internal/app"
	"github.com/vytor/drumdungeon/internal/errors"
	"github.com/vytor/drumdungeon/internal/models"
	"github.com/vytor/drumdungeon/internal/services"
)

// errUsage makes dispatch print the command usage.
var errUsage = stderrors.New("invalid arguments")

type cli struct {
	app    *app.App
	out    io.Writer
	errOut io.Writer
	env    func(string) string
}

type command struct {
	usage string
	run   func(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error
	flags func(fs *flag.FlagSet)
}

var commands = map[string]command{
	"create-student": {usage: "create-student [-display NAME] [-avatar FILE] <student>", run: cmdCreateStudent, flags: createFlags},
	"remove-student": {usage: "remove-student <student>", run: cmdRemoveStudent},
	"attendance":     {usage: "attendance [-date YYYY-MM-DD] [-grade N] <student>", run: cmdAttendance, flags: attendanceFlags},
	"practice":       {usage: "practice <student> <exercise>", run: cmdPractice},
	"checkin":        {usage: "checkin [<student>]  (defaults to $STUDENT)", run: cmdCheckIn},
	"stats":          {usage: "stats <student>", run: cmdStats},
	"leaderboard":    {usage: "leaderboard [-limit N] [-generate]", run: cmdLeaderboard, flags: leaderboardFlags},
	"reconcile":      {usage: "reconcile [<student>]", run: cmdReconcile},
	"import":         {usage: "import  (copy every stats file into the relational store)", run: cmdImport},
	"log-bpm":        {usage: "log-bpm <student> <exercise> <start_bpm> <end_bpm>", run: cmdLogBPM},
	"performance":    {usage: "performance <student> <average|best-week|difficulty>", run: cmdPerformance},
}

func (c *cli) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(c.errOut, "usage: drumctl <command> [arguments]")
	fmt.Fprintln(c.errOut, "\ncommands:")
	for _, name := range names {
		fmt.Fprintf(c.errOut, "  %s\n", commands[name].usage)
	}
}

// dispatch runs one subcommand and returns the process exit code.
func (c *cli) dispatch(ctx context.Context, args []string) int {
	if len(args) == 0 {
		c.usage()
		return 1
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.errOut, "unknown command %q\n", args[0])
		c.usage()
		return 1
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(c.errOut)
	fs.Usage = func() { fmt.Fprintf(c.errOut, "usage: drumctl %s\n", cmd.usage) }
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		return 1
	}

	if err := cmd.run(ctx, c, fs, fs.Args()); err != nil {
		if stderrors.Is(err, errUsage) {
			fs.Usage()
			return 1
		}
		var appErr *errors.AppError
		if stderrors.As(err, &appErr) {
			fmt.Fprintf(c.errOut, "error: %s\n", appErr.Message)
		} else {
			fmt.Fprintf(c.errOut, "error: %v\n", err)
		}
		return 1
	}
	return 0
}

func createFlags(fs *flag.FlagSet) {
	fs.String("display", "", "display name")
	fs.String("avatar", "", "avatar file name")
}

func attendanceFlags(fs *flag.FlagSet) {
	fs.String("date", "", "lesson date (default today)")
	fs.String("grade", "", "lesson grade")
}

func leaderboardFlags(fs *flag.FlagSet) {
	fs.Int("limit", 0, "show only the first N students")
	fs.Bool("generate", false, "regenerate leaderboard.json before printing")
}

func flagString(fs *flag.FlagSet, name string) string {
	return fs.Lookup(name).Value.String()
}

func cmdCreateStudent(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	st, err := c.app.Students.Create(ctx, args[0], flagString(fs, "display"), flagString(fs, "avatar"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created student %s (%s)\n", st.Student, st.Profile.Name)
	return nil
}

func cmdRemoveStudent(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if err := c.app.Students.Delete(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Removed student %s\n", args[0])
	return nil
}

func cmdAttendance(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	var date models.Date
	if raw := flagString(fs, "date"); raw != "" {
		d, err := models.ParseDate(raw)
		if err != nil {
			return errors.NewValidationError("date", "must be YYYY-MM-DD")
		}
		date = d
	}
	var grade *float64
	if raw := flagString(fs, "grade"); raw != "" {
		g, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.NewValidationError("grade", "must be a number")
		}
		grade = &g
	}

	res, err := c.app.Attendance.MarkAttendance(ctx, args[0], date, grade)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Attendance logged for %s on %s: +%d XP (total %d, level %d)\n",
		args[0], res.Date, res.XPAwarded, res.TotalXP, res.Level)
	if res.BonusAwarded {
		fmt.Fprintln(c.out, "Monthly consistency bonus awarded")
	}
	printMedals(c, res.NewMedals)
	return nil
}

func cmdPractice(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	res, err := c.app.Practice.CompleteExercise(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s completed %s: +%d XP (total %d, level %d, streak %d)\n",
		args[0], res.Exercise, res.XPAwarded, res.TotalXP, res.Level, res.Streak)
	printMedals(c, res.NewMedals)
	return nil
}

func cmdCheckIn(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	var name string
	switch len(args) {
	case 0:
		name = c.env("STUDENT")
	case 1:
		name = args[0]
	}
	if name == "" {
		return errUsage
	}

	res, err := c.app.Streak.CheckIn(ctx, name)
	if err != nil {
		return err
	}
	if !res.Advanced {
		fmt.Fprintln(c.out, "Already logged practice today.")
		return nil
	}
	fmt.Fprintf(c.out, "Streak for %s: %d days", name, res.Streak)
	if res.Bonus > 0 {
		fmt.Fprintf(c.out, " (+%d XP bonus)", res.Bonus)
	}
	fmt.Fprintln(c.out)
	return nil
}

func cmdStats(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	st, err := c.app.Stats.Get(ctx, args[0])
	if err != nil {
		return err
	}

	labels := c.app.Config.Policy.MedalLabels()
	fmt.Fprintf(c.out, "Student: %s\n", st.Profile.Name)
	fmt.Fprintln(c.out, strings.Repeat("-", 40))
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Level:\t%d (%d/%d XP)\n", st.Level.Current, st.Level.ProgressXP, st.Level.ProgressXP+st.Level.XPToNext)
	fmt.Fprintf(tw, "XP:\t%d\n", st.XP.Total)
	for _, cat := range models.KnownCategories {
		fmt.Fprintf(tw, "  %s:\t%d\n", cat, st.XP.Categories[cat])
	}
	fmt.Fprintf(tw, "Current streak:\t%d days\n", st.Streak.Current)
	fmt.Fprintf(tw, "Longest streak:\t%d days\n", st.Streak.Longest)
	fmt.Fprintf(tw, "Lessons:\t%d\n", st.Attendance.LifetimeLessons)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(st.Medals) == 0 {
		fmt.Fprintln(c.out, "Medals: (none yet)")
		return nil
	}
	fmt.Fprintf(c.out, "Medals (%d):\n", len(st.Medals))
	for _, id := range st.Medals {
		label := labels[id]
		if label == "" {
			label = id
		}
		fmt.Fprintf(c.out, "- %s\n", label)
	}
	return nil
}

func cmdLeaderboard(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	limit, _ := strconv.Atoi(flagString(fs, "limit"))

	var (
		board *models.Leaderboard
		err   error
	)
	if flagString(fs, "generate") == "true" {
		board, err = c.app.Leaderboard.Generate(ctx)
		if err == nil && limit > 0 && len(board.Students) > limit {
			board.Students = board.Students[:limit]
		}
	} else {
		board, err = c.app.Leaderboard.Top(ctx, limit)
	}
	if err != nil {
		return err
	}

	if len(board.Students) == 0 {
		fmt.Fprintln(c.out, "No students found.")
		return nil
	}
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSTUDENT\tLEVEL\tXP\tSTREAK\tMEDALS")
	for _, e := range board.Students {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\n", e.Rank, e.DisplayName, e.Level, e.XPTotal, e.Streak, len(e.Medals))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Last updated: %s\n", board.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func cmdReconcile(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	switch len(args) {
	case 0:
		return runBatch(ctx, c)
	case 1:
		changed, err := c.app.Reconcile.ReconcileStudent(ctx, args[0])
		if err != nil && !stderrors.Is(err, services.ErrMirrorSync) {
			return err
		}
		fmt.Fprintf(c.out, "Reconciled %s: changed=%t\n", args[0], changed)
		if err != nil {
			fmt.Fprintln(c.out, "warning: relational mirror not updated")
		}
		return nil
	default:
		return errUsage
	}
}

func cmdImport(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if !c.app.Sync.Enabled() {
		return stderrors.New("relational store is not configured (set DB_ENABLED and DB_TYPE)")
	}
	return runBatch(ctx, c)
}

func runBatch(ctx context.Context, c *cli) error {
	report, err := c.app.Reconcile.ReconcileAll(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Students: %d, changed: %d, mirror failures: %d\n",
		report.Students, report.Changed, report.MirrorFailures)
	if len(report.Failed) > 0 {
		sort.Strings(report.Failed)
		return fmt.Errorf("failed students: %s", strings.Join(report.Failed, ", "))
	}
	if _, err := c.app.Leaderboard.Generate(ctx); err != nil {
		return err
	}
	return nil
}

func cmdLogBPM(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	start, err := strconv.Atoi(args[2])
	if err != nil {
		return errUsage
	}
	end, err := strconv.Atoi(args[3])
	if err != nil {
		return errUsage
	}

	entry, err := c.app.Performance.Log(ctx, args[0], args[1], start, end)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Logged practice: %s | %s | %d->%d BPM (%s)\n", args[0], args[1], start, end, entry.Difficulty)
	return nil
}

func cmdPerformance(ctx context.Context, c *cli, fs *flag.FlagSet, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	student := args[0]

	switch args[1] {
	case "average":
		avg, err := c.app.Performance.AverageIncrease(ctx, student)
		if err != nil {
			return err
		}
		if len(avg) == 0 {
			fmt.Fprintln(c.out, "No sessions logged yet.")
		}
		for _, a := range avg {
			fmt.Fprintf(c.out, "%s: %+.1f BPM average over %d sessions\n", a.Exercise, a.Average, a.Sessions)
		}

	case "best-week":
		best, err := c.app.Performance.BestSessionSince(ctx, student, 7)
		if err != nil {
			return err
		}
		if best == nil {
			fmt.Fprintln(c.out, "No sessions in the last 7 days.")
			return nil
		}
		fmt.Fprintln(c.out, "Best session last 7 days:")
		fmt.Fprintf(c.out, "Exercise:   %s\n", best.Exercise)
		fmt.Fprintf(c.out, "Date:       %s\n", best.Entry.Date)
		fmt.Fprintf(c.out, "BPM jump:   %+d (%d -> %d)\n", best.Entry.Increase(), best.Entry.StartBPM, best.Entry.EndBPM)
		fmt.Fprintf(c.out, "Difficulty: %s\n", best.Entry.Difficulty)

	case "difficulty":
		usage, err := c.app.Performance.DifficultyUsage(ctx, student)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, "Difficulty usage:")
		for _, d := range []string{models.DifficultyEasy, models.DifficultyIntermediate, models.DifficultyAdvanced} {
			if n := usage.Counts[d]; n > 0 {
				fmt.Fprintf(c.out, "%-13s: %d sessions\n", d, n)
			}
		}
		if len(usage.Transitions) == 0 {
			fmt.Fprintln(c.out, "\nNo difficulty transitions yet.")
			return nil
		}
		fmt.Fprintln(c.out, "\nTransitions:")
		keys := make([]string, 0, len(usage.Transitions))
		for k := range usage.Transitions {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(c.out, "%s: %d times\n", k, usage.Transitions[k])
		}

	default:
		return errUsage
	}
	return nil
}

func printMedals(c *cli, ids []string) {
	if len(ids) == 0 {
		return
	}
	labels := c.app.Config.Policy.MedalLabels()
	for _, id := range ids {
		label := labels[id]
		if label == "" {
			label = id
		}
		fmt.Fprintf(c.out, "New medal: %s\n", label)
	}
}
