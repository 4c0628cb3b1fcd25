// Package task defines ScheduledTask, the event-loop-facing augmentation of
// a model.Event with notification/execution callbacks (component C).
package task

import (
	"sort"
	"time"

	"github.com/ostepan8/scheduled/internal/model"
)

// Callback is invoked by the event loop at notification or execution time.
type Callback func()

// ScheduledTask pairs an Event occurrence with the callbacks the event loop
// fires for it: zero or more notifications leading up to Time, then one
// execution at Time itself.
type ScheduledTask struct {
	ID          string
	Category    string
	Description string
	Title       string
	Time        time.Time
	Duration    time.Duration

	notifyCb  Callback
	actionCb  Callback
	notifyAt  []time.Time
	notifyIdx int

	// LastError records the most recent callback panic/error surfaced by
	// the event loop, for observability; nil means no failure so far.
	LastError error
}

// New builds a task with explicit absolute notification instants. Per
// spec.md §4.C, any instant at or before now is dropped before the sequence
// is sorted and stored — a task is never built with an already-due
// notification pending. now is taken as a parameter rather than read from
// time.Now() so callers can thread an injected scheduler.Clock through
// (spec.md §9's "allow injecting a clock source for deterministic tests").
func New(id, title, description, category string, at time.Time, dur time.Duration, now time.Time, notifyAt []time.Time, notifyCb, actionCb Callback) *ScheduledTask {
	sorted := make([]time.Time, 0, len(notifyAt))
	for _, t := range notifyAt {
		if t.After(now) {
			sorted = append(sorted, t)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return &ScheduledTask{
		ID: id, Title: title, Description: description, Category: category,
		Time: at, Duration: dur,
		notifyCb: notifyCb, actionCb: actionCb, notifyAt: sorted,
	}
}

// NewBefore builds a task whose notification instants are Time minus each
// given lead duration — "notify 1h before", "notify 10m before".
func NewBefore(id, title, description, category string, at time.Time, dur time.Duration, now time.Time, before []time.Duration, notifyCb, actionCb Callback) *ScheduledTask {
	times := make([]time.Time, 0, len(before))
	for _, d := range before {
		times = append(times, at.Add(-d))
	}
	return New(id, title, description, category, at, dur, now, times, notifyCb, actionCb)
}

// FromEvent wraps a single model.Event occurrence (already resolved to a
// concrete Time by the caller) as a task with no notifications, for callers
// that only need the execute-at-Time behavior (e.g. wake tasks).
func FromEvent(e *model.Event, at time.Time, actionCb Callback) *ScheduledTask {
	return New(e.ID, e.Title, e.Description, e.Category, at, e.Duration, time.Now(), nil, nil, actionCb)
}

// NextNotifyTime returns the next pending notification instant, or the zero
// Time if none remain.
func (t *ScheduledTask) NextNotifyTime() time.Time {
	if t.notifyIdx >= len(t.notifyAt) {
		return time.Time{}
	}
	return t.notifyAt[t.notifyIdx]
}

// HasPendingNotifications reports whether any notification remains unsent.
func (t *ScheduledTask) HasPendingNotifications() bool {
	return t.notifyIdx < len(t.notifyAt)
}

// MarkNotificationSent advances past the current pending notification.
func (t *ScheduledTask) MarkNotificationSent() {
	if t.notifyIdx < len(t.notifyAt) {
		t.notifyIdx++
	}
}

// Notify invokes the notification callback, if any.
func (t *ScheduledTask) Notify() {
	if t.notifyCb != nil {
		t.notifyCb()
	}
}

// Execute invokes the execution callback, if any.
func (t *ScheduledTask) Execute() {
	if t.actionCb != nil {
		t.actionCb()
	}
}
