package model

import "time"

// TimeSlot is a contiguous span of time, free or occupied.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (s TimeSlot) Duration() time.Duration { return s.End.Sub(s.Start) }

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Conflicts returns every occurrence that overlaps [at, at+dur).
func (idx *Index) Conflicts(at time.Time, dur time.Duration) []Occurrence {
	end := at.Add(dur)
	// Widen the scan window generously on both sides: recurring events far
	// outside [at, end) cannot land an occurrence inside it, but a direct
	// RangeExpanded over exactly [at, end) would miss a long-running event
	// that starts earlier and ends after at. Bound expansion at a day on
	// either side of the queried window, which covers every realistic
	// single-event duration this scheduler deals with.
	scanStart := at.AddDate(0, 0, -1)
	scanEnd := end.AddDate(0, 0, 1)

	occurrences := idx.RangeExpanded(scanStart, scanEnd)
	var out []Occurrence
	for _, o := range occurrences {
		if overlaps(o.Time, o.End(), at, end) {
			out = append(out, o)
		}
	}
	return out
}

// ValidateEventTime reports whether the given time/duration can be
// scheduled without conflicting with any live event.
func (idx *Index) ValidateEventTime(at time.Time, dur time.Duration) bool {
	return len(idx.Conflicts(at, dur)) == 0
}

// FreeSlots returns gaps of at least minDuration within [startHour,endHour)
// of the calendar day containing day, after subtracting every occurrence
// that overlaps that window.
func (idx *Index) FreeSlots(day time.Time, startHour, endHour int, minDuration time.Duration) []TimeSlot {
	dayStart := truncateToDay(day)
	windowStart := dayStart.Add(time.Duration(startHour) * time.Hour)
	windowEnd := dayStart.Add(time.Duration(endHour) * time.Hour)

	busy := idx.RangeExpanded(windowStart.AddDate(0, 0, -1), windowEnd.AddDate(0, 0, 1))

	var occupied []TimeSlot
	for _, o := range busy {
		s, e := o.Time, o.End()
		if s.Before(windowStart) {
			s = windowStart
		}
		if e.After(windowEnd) {
			e = windowEnd
		}
		if s.Before(e) {
			occupied = append(occupied, TimeSlot{Start: s, End: e})
		}
	}
	mergeSlots(&occupied)

	var free []TimeSlot
	cursor := windowStart
	for _, slot := range occupied {
		if slot.Start.After(cursor) {
			if gap := slot.Start.Sub(cursor); gap >= minDuration {
				free = append(free, TimeSlot{Start: cursor, End: slot.Start})
			}
		}
		if slot.End.After(cursor) {
			cursor = slot.End
		}
	}
	if windowEnd.Sub(cursor) >= minDuration {
		free = append(free, TimeSlot{Start: cursor, End: windowEnd})
	}
	return free
}

func mergeSlots(slots *[]TimeSlot) {
	s := *slots
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1].Start.After(s[j].Start); j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	merged := s[:0]
	for _, slot := range s {
		if n := len(merged); n > 0 && !slot.Start.After(merged[n-1].End) {
			if slot.End.After(merged[n-1].End) {
				merged[n-1].End = slot.End
			}
			continue
		}
		merged = append(merged, slot)
	}
	*slots = merged
}

// NextFree scans forward day by day from after, within [startHour,endHour)
// each day, for the first slot of at least dur. It gives up after one year.
func (idx *Index) NextFree(dur time.Duration, after time.Time, startHour, endHour int) (TimeSlot, bool) {
	for d := 0; d < 366; d++ {
		day := after.AddDate(0, 0, d)
		for _, slot := range idx.FreeSlots(day, startHour, endHour, dur) {
			candidateStart := slot.Start
			if d == 0 && candidateStart.Before(after) {
				if slot.End.Sub(after) < dur {
					continue
				}
				candidateStart = after
			}
			return TimeSlot{Start: candidateStart, End: candidateStart.Add(dur)}, true
		}
	}
	return TimeSlot{}, false
}
