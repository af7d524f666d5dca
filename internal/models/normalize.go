package models

import "sort"

// Normalize fills in blocks missing from records written by older versions.
// It reports whether anything was filled. Totals and levels are left to the
// caller, which always re-derives them.
func (s *StudentStats) Normalize() bool {
	changed := false

	if s.XP.Categories == nil {
		s.XP.Categories = make(map[string]int, len(KnownCategories))
		changed = true
	}
	for _, c := range KnownCategories {
		if _, ok := s.XP.Categories[c]; !ok {
			s.XP.Categories[c] = 0
			changed = true
		}
	}

	if s.Level.Current < 1 {
		s.Level.Current = 1
		changed = true
	}
	if s.Streak.Current < 0 {
		s.Streak.Current = 0
		changed = true
	}
	if s.Streak.Longest < s.Streak.Current {
		s.Streak.Longest = s.Streak.Current
		changed = true
	}

	if s.Attendance.Dates == nil {
		s.Attendance.Dates = []Date{}
		changed = true
	}
	if s.Milestones == nil {
		s.Milestones = map[string]bool{}
		changed = true
	}

	if s.Medals == nil {
		s.Medals = []string{}
		changed = true
	}
	if medals := dedupeSorted(s.Medals); len(medals) != len(s.Medals) || !sort.StringsAreSorted(s.Medals) {
		s.Medals = medals
		changed = true
	}

	if s.History.Events == nil {
		s.History.Events = []HistoryEvent{}
		changed = true
	}

	if s.Profile.Name == "" && s.Student != "" {
		s.Profile.Name = s.Student
		changed = true
	}
	if s.Profile.Avatar == "" {
		s.Profile.Avatar = DefaultAvatar
		changed = true
	}
	return changed
}

// EnsureMilestones adds a false flag for every key not yet tracked.
func (s *StudentStats) EnsureMilestones(keys []string) bool {
	if s.Milestones == nil {
		s.Milestones = make(map[string]bool, len(keys))
	}
	changed := false
	for _, k := range keys {
		if _, ok := s.Milestones[k]; !ok {
			s.Milestones[k] = false
			changed = true
		}
	}
	return changed
}

func dedupeSorted(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
