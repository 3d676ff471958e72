// Package streak derives consecutive-day study streaks from a daily activity log.
package streak

import (
	"sort"
	"time"
)

// civil reduces t to its calendar date, read in t's own location, as a UTC
// midnight so that day arithmetic is exact.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Compute returns the number of consecutive calendar days with activity,
// ending today or yesterday. days are calendar dates in any order; today is
// read in its own location. A most recent entry two or more days old breaks
// the streak.
func Compute(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	dates := make([]time.Time, len(days))
	for i, d := range days {
		dates[i] = civil(d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	current := civil(today)
	gap := int(current.Sub(dates[0]).Hours() / 24)
	if gap > 1 {
		return 0
	}
	if gap == 1 {
		current = current.AddDate(0, 0, -1)
	}

	count := 0
	for _, d := range dates {
		if d.Equal(current) {
			count++
			current = current.AddDate(0, 0, -1)
			continue
		}
		if d.After(current) {
			// duplicate of a day already counted
			continue
		}
		break
	}
	return count
}
