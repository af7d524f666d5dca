package sqlstore

import (
	"slices"
	"sort"

	"github.com/vytor/drumdungeon/internal/models"
)

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k, ok := range set {
		if ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// extraCategories returns the category names that have no column of their own.
func extraCategories(categories map[string]int) []string {
	out := []string{}
	for name := range categories {
		if !slices.Contains(models.KnownCategories, name) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// sameXP compares totals and categories, a missing category counting as zero.
func sameXP(a, b models.XP) bool {
	if a.Total != b.Total {
		return false
	}
	for k, v := range a.Categories {
		if b.Categories[k] != v {
			return false
		}
	}
	for k, v := range b.Categories {
		if a.Categories[k] != v {
			return false
		}
	}
	return true
}
