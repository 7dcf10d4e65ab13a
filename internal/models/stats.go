package models

import "time"

// Stats are the dashboard counters. The counts come from independent
// queries and are not a consistent snapshot.
type Stats struct {
	PostCount    int
	CommentCount int
	UserCount    int
	TotalViews   int
	Monthly      []MonthStat
}

// MonthStat counts the posts and comments created in one calendar month.
type MonthStat struct {
	Month    time.Time
	Posts    int
	Comments int
}

// Label is the short month name used on the dashboard chart.
func (m MonthStat) Label() string {
	return m.Month.Format("Jan")
}

// MonthWindow returns the first day of each of the last n months, oldest
// first, ending with the month containing now.
func MonthWindow(now time.Time, n int) []time.Time {
	now = now.UTC()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddDate(0, i-n+1, 0)
	}
	return months
}

// BucketByMonth counts post and comment timestamps into the months of
// MonthWindow(now, n). Timestamps outside the window are ignored.
func BucketByMonth(now time.Time, n int, posts, comments []time.Time) []MonthStat {
	months := MonthWindow(now, n)
	stats := make([]MonthStat, n)
	index := make(map[string]int, n)
	for i, m := range months {
		stats[i].Month = m
		index[m.Format("2006-01")] = i
	}
	for _, t := range posts {
		if i, ok := index[t.UTC().Format("2006-01")]; ok {
			stats[i].Posts++
		}
	}
	for _, t := range comments {
		if i, ok := index[t.UTC().Format("2006-01")]; ok {
			stats[i].Comments++
		}
	}
	return stats
}
