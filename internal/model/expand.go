package model

import (
	"sort"
	"time"
)

// occurrenceBatch is the chunk size used when walking a recurrence.Pattern
// looking for occurrences inside a bounded window; kept small since this is
// a personal-scale scheduler, not a bulk generator.
const occurrenceBatch = 64

// occurrencesInRange returns every occurrence of e (its own Time for
// one-time events, Pattern-derived instants for recurring ones) with
// start <= Time < end.
func occurrencesInRange(e *Event, start, end time.Time) []Occurrence {
	if !e.IsRecurring() {
		if !e.Time.Before(start) && e.Time.Before(end) {
			return []Occurrence{{Event: e, Time: e.Time}}
		}
		return nil
	}

	var out []Occurrence
	after := start.Add(-time.Nanosecond)
	for {
		batch := e.Pattern.NextOccurrences(after, occurrenceBatch)
		if len(batch) == 0 {
			return out
		}
		for _, t := range batch {
			if !t.Before(end) {
				return out
			}
			out = append(out, Occurrence{Event: e, Time: t})
			after = t
		}
		if len(batch) < occurrenceBatch {
			return out
		}
	}
}

// RangeExpanded returns every occurrence of every live event that falls in
// [start, end), across all events, ordered by time.
func (idx *Index) RangeExpanded(start, end time.Time) []Occurrence {
	idx.mu.RLock()
	events := idx.snapshotLocked()
	idx.mu.RUnlock()

	var out []Occurrence
	for _, e := range events {
		out = append(out, occurrencesInRange(e, start, end)...)
	}
	sortOccurrences(out)
	return out
}

// inWindow returns live events (one-time or recurring) whose own anchor
// Time falls within [start, end), without expanding recurring patterns
// into further occurrences. OnDay/InWeek/InMonth match the source model's
// behavior of only ever reporting an event's anchor instant for these
// convenience queries; only RangeExpanded walks a recurrence forward.
func (idx *Index) inWindow(start, end time.Time) []Occurrence {
	idx.mu.RLock()
	events := idx.snapshotLocked()
	idx.mu.RUnlock()

	var out []Occurrence
	for _, e := range events {
		if !e.Time.Before(start) && e.Time.Before(end) {
			out = append(out, Occurrence{Event: e, Time: e.Time})
		}
	}
	sortOccurrences(out)
	return out
}

// OnDay returns events anchored within the calendar day containing day
// (using day's own location). Recurring events are not expanded; only an
// event whose own Time falls on this day is included.
func (idx *Index) OnDay(day time.Time) []Occurrence {
	start := truncateToDay(day)
	end := start.AddDate(0, 0, 1)
	return idx.inWindow(start, end)
}

// InWeek returns events anchored within the Monday-to-Sunday week
// containing day. Recurring events are not expanded.
func (idx *Index) InWeek(day time.Time) []Occurrence {
	start := truncateToDay(day)
	start = start.AddDate(0, 0, -((int(start.Weekday())+6)%7))
	end := start.AddDate(0, 0, 7)
	return idx.inWindow(start, end)
}

// InMonth returns events anchored within the calendar month containing day.
// Recurring events are not expanded.
func (idx *Index) InMonth(day time.Time) []Occurrence {
	y, m, _ := day.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 1, 0)
	return idx.inWindow(start, end)
}

// GetNext returns the single soonest occurrence strictly after now, across
// all live events.
func (idx *Index) GetNext(now time.Time) (*Occurrence, error) {
	next := idx.GetNextN(now, 1)
	if len(next) == 0 {
		return nil, ErrNotFound
	}
	return &next[0], nil
}

// GetNextN returns the n soonest occurrences strictly after now, across all
// live events, ordered by time.
func (idx *Index) GetNextN(now time.Time, n int) []Occurrence {
	if n <= 0 {
		return nil
	}
	idx.mu.RLock()
	events := idx.snapshotLocked()
	idx.mu.RUnlock()

	var out []Occurrence
	for _, e := range events {
		if !e.IsRecurring() {
			if e.Time.After(now) {
				out = append(out, Occurrence{Event: e, Time: e.Time})
			}
			continue
		}
		for _, t := range e.Pattern.NextOccurrences(now, n) {
			out = append(out, Occurrence{Event: e, Time: t})
		}
	}
	sortOccurrences(out)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func sortOccurrences(occ []Occurrence) {
	sort.Slice(occ, func(i, j int) bool { return occ[i].Time.Before(occ[j].Time) })
}
