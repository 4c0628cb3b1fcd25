// Package model holds the live and soft-deleted event collections and the
// read/query/mutate surface over them.
package model

import (
	"time"

	"github.com/ostepan8/scheduled/internal/recurrence"
)

// Event is a single calendar entry. One-time events leave Pattern nil;
// recurring events carry an immutable, shared recurrence.Pattern that
// generates further occurrences from Time onward.
type Event struct {
	ID          string
	Title       string
	Description string
	Category    string
	Time        time.Time
	Duration    time.Duration
	Pattern     *recurrence.Pattern
	// NotifierName and ActionName name entries in the notifier/action
	// registries (spec.md §3) a task-category event resolves against when
	// the caller derives a scheduled task from it.
	NotifierName string
	ActionName   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep-enough copy for safe handoff across the mutex
// boundary. Pattern is immutable and shared, not copied.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	cp := *e
	return &cp
}

// End returns the instant the event's duration elapses.
func (e *Event) End() time.Time {
	return e.Time.Add(e.Duration)
}

// IsRecurring reports whether the event carries a recurrence pattern.
func (e *Event) IsRecurring() bool {
	return e.Pattern != nil
}

// Occurrence is one concrete instance of an Event in time — either the
// event's own Time (one-time events, or the first instance of a recurring
// one) or one of its Pattern-derived future instants.
type Occurrence struct {
	Event *Event
	Time  time.Time
}

// End returns the instant this occurrence's duration elapses.
func (o Occurrence) End() time.Time {
	return o.Time.Add(o.Event.Duration)
}

func (e *Event) validate() error {
	if e.ID == "" || e.Duration < 0 || e.Time.IsZero() {
		return ErrInvalidEvent
	}
	return nil
}
