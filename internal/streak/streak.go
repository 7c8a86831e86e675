// Package streak derives streak counts from a habit's completion days.
package streak

import (
	"time"

	"github.com/brk3/habitstate/pkg/habit"
)

// Current returns the number of consecutive completed days ending today, or
// ending yesterday when today is not yet done. Entries that are not valid
// YYYY-MM-DD days are ignored.
func Current(completedDates []string, now time.Time) int {
	days := make(map[habit.Date]struct{}, len(completedDates))
	for _, s := range completedDates {
		d, err := habit.ParseDate(s)
		if err != nil {
			continue
		}
		days[d] = struct{}{}
	}

	today := habit.DateOf(now)
	cursor := today
	if _, ok := days[today]; !ok {
		cursor = today.AddDays(-1)
		if _, ok := days[cursor]; !ok {
			return 0
		}
	}

	count := 0
	for {
		if _, ok := days[cursor]; !ok {
			return count
		}
		count++
		cursor = cursor.AddDays(-1)
	}
}

// Best folds a freshly computed streak into the historical best.
func Best(oldBest, current int) int {
	return max(oldBest, current)
}
