package model

import (
	"sort"
	"time"
)

// DayCount pairs a calendar day with an occurrence count, used for the
// busiest-days ranking in Stats.
type DayCount struct {
	Day   time.Time
	Count int
}

// HourCount pairs an hour-of-day (0-23) with an occurrence count, used for
// the busiest-hours histogram in Stats.
type HourCount struct {
	Hour  int
	Count int
}

// EventStats summarizes occurrence volume over a time window.
type EventStats struct {
	TotalEvents  int
	TotalMinutes int
	ByCategory   map[string]int
	BusiestDays  []DayCount
	BusiestHours []HourCount
}

// busiestDaysTopK bounds BusiestDays to the top-K busiest calendar days, per
// spec.md §4.B's "busiestDays: top-K by count".
const busiestDaysTopK = 10

// Stats aggregates every occurrence in [start, end) by category, by
// calendar day, and by hour-of-day.
func (idx *Index) Stats(start, end time.Time) EventStats {
	occurrences := idx.RangeExpanded(start, end)

	stats := EventStats{ByCategory: make(map[string]int)}
	dayCounts := make(map[time.Time]int)
	hourCounts := make(map[int]int)

	for _, o := range occurrences {
		stats.TotalEvents++
		stats.TotalMinutes += int(o.Event.Duration / time.Minute)
		if o.Event.Category != "" {
			stats.ByCategory[o.Event.Category]++
		}
		dayCounts[truncateToDay(o.Time)]++
		hourCounts[o.Time.Hour()]++
	}

	for d, c := range dayCounts {
		stats.BusiestDays = append(stats.BusiestDays, DayCount{Day: d, Count: c})
	}
	sort.Slice(stats.BusiestDays, func(i, j int) bool {
		if stats.BusiestDays[i].Count != stats.BusiestDays[j].Count {
			return stats.BusiestDays[i].Count > stats.BusiestDays[j].Count
		}
		return stats.BusiestDays[i].Day.Before(stats.BusiestDays[j].Day)
	})
	if len(stats.BusiestDays) > busiestDaysTopK {
		stats.BusiestDays = stats.BusiestDays[:busiestDaysTopK]
	}

	// BusiestHours is always a full 24-bucket histogram (spec.md §4.B), not
	// just the hours that saw any occurrence.
	stats.BusiestHours = make([]HourCount, 24)
	for h := 0; h < 24; h++ {
		stats.BusiestHours[h] = HourCount{Hour: h, Count: hourCounts[h]}
	}

	return stats
}
