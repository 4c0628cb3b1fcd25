// Package scheduler implements the single-threaded priority-queue event
// loop (component D): a min-heap of ScheduledTask ordered by event time,
// drained by one worker goroutine that fires pending notifications before
// executing each task in turn, sleeping exactly until the next thing it
// needs to do.
package scheduler

import (
	"container/heap"
	"fmt"
	"sync"
	"time"

	"github.com/ostepan8/scheduled/internal/task"
)

// internalCategory tasks are never mirrored into the model (the wake
// scheduler's reserved category, spec.md's component E), so an absent
// EventSource lookup for one is expected, not staleness.
const internalCategory = "internal"

// EventSource lets the loop detect a stale queue entry: a task whose model
// event was edited or removed after it was enqueued. CurrentTime returns
// the live event's Time and true, or false if there is no such live event
// (which is always the case for internal-category tasks, which are never
// written to the model).
type EventSource interface {
	CurrentTime(id string) (time.Time, bool)
}

// Loop is the event-loop worker. Zero value is not usable; build one with
// New.
type Loop struct {
	mu     sync.Mutex
	pq     *taskHeap
	clock  Clock
	source EventSource

	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	running bool

	onPanic     func(t *task.ScheduledTask, stage string, r any)
	onNotify    func(t *task.ScheduledTask)
	onExecute   func(t *task.ScheduledTask)
	onStaleDrop func(t *task.ScheduledTask)
}

// Option configures a Loop at construction time.
type Option func(*Loop)

// WithClock overrides the default RealClock, for deterministic tests.
func WithClock(c Clock) Option {
	return func(l *Loop) { l.clock = c }
}

// WithEventSource enables stale-entry detection against a live model.
func WithEventSource(s EventSource) Option {
	return func(l *Loop) { l.source = s }
}

// WithPanicHandler installs a callback invoked when a task's Notify or
// Execute callback panics. Without one, panics are swallowed after being
// recorded on the task's LastError.
func WithPanicHandler(f func(t *task.ScheduledTask, stage string, r any)) Option {
	return func(l *Loop) { l.onPanic = f }
}

// WithNotifyHook installs a callback invoked after every notification fire,
// including one whose callback panicked, for metrics (e.g. a Prometheus
// counter).
func WithNotifyHook(f func(t *task.ScheduledTask)) Option {
	return func(l *Loop) { l.onNotify = f }
}

// WithExecuteHook installs a callback invoked after every task execution.
func WithExecuteHook(f func(t *task.ScheduledTask)) Option {
	return func(l *Loop) { l.onExecute = f }
}

// WithStaleDropHook installs a callback invoked whenever a queued task is
// silently dropped for staleness (spec.md §4.D, §8's testable property).
func WithStaleDropHook(f func(t *task.ScheduledTask)) Option {
	return func(l *Loop) { l.onStaleDrop = f }
}

// New builds a Loop. It does not start the worker goroutine; call Start.
func New(opts ...Option) *Loop {
	l := &Loop{
		pq:    newTaskHeap(),
		clock: RealClock{},
		wake:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the worker goroutine. Calling Start twice is a no-op.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	l.mu.Unlock()

	go l.run()
}

// Stop signals the worker to exit and waits for it to do so.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stop)
	done := l.done
	l.mu.Unlock()

	<-done
}

// AddTask pushes a task onto the queue and wakes the worker if it is
// sleeping on something further out.
func (l *Loop) AddTask(t *task.ScheduledTask) {
	l.mu.Lock()
	heap.Push(l.pq, t)
	l.mu.Unlock()
	l.signal()
}

// AddOrReplace removes any queued task sharing t.ID and t.Category before
// pushing t. This is how internal-category tasks (e.g. the daily wake task)
// stay deduplicated by (category, id): they are never written to the model,
// so the staleness check an ordinary task relies on never fires for them.
func (l *Loop) AddOrReplace(t *task.ScheduledTask) {
	l.mu.Lock()
	if i, ok := l.pq.index[t.ID]; ok && l.pq.items[i].Category == t.Category {
		heap.Remove(l.pq, i)
	}
	heap.Push(l.pq, t)
	l.mu.Unlock()
	l.signal()
}

func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len reports the current queue depth, for tests and metrics.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pq.Len()
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		l.mu.Lock()
		if l.pq.Len() == 0 {
			l.mu.Unlock()
			select {
			case <-l.stop:
				return
			case <-l.wake:
			}
			continue
		}

		top := l.pq.items[0]
		now := l.clock.Now()

		if l.source != nil && top.Category != internalCategory {
			currentTime, ok := l.source.CurrentTime(top.ID)
			if !ok || !currentTime.Equal(top.Time) {
				heap.Pop(l.pq)
				l.mu.Unlock()
				if l.onStaleDrop != nil {
					l.onStaleDrop(top)
				}
				continue
			}
		}

		if top.HasPendingNotifications() && !now.Before(top.NextNotifyTime()) {
			l.mu.Unlock()
			l.safeCall(top, "notify", top.Notify)
			l.mu.Lock()
			top.MarkNotificationSent()
			l.mu.Unlock()
			if l.onNotify != nil {
				l.onNotify(top)
			}
			continue
		}

		if !now.Before(top.Time) {
			heap.Pop(l.pq)
			l.mu.Unlock()
			l.safeCall(top, "execute", top.Execute)
			if l.onExecute != nil {
				l.onExecute(top)
			}
			continue
		}

		wakeAt := top.Time
		if top.HasPendingNotifications() {
			if nt := top.NextNotifyTime(); nt.Before(wakeAt) {
				wakeAt = nt
			}
		}
		l.mu.Unlock()

		d := wakeAt.Sub(l.clock.Now())
		if d < 0 {
			d = 0
		}
		timer := time.NewTimer(d)
		select {
		case <-l.stop:
			timer.Stop()
			return
		case <-l.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (l *Loop) safeCall(t *task.ScheduledTask, stage string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.LastError = fmt.Errorf("scheduler: %s panicked: %v", stage, r)
			if l.onPanic != nil {
				l.onPanic(t, stage, r)
			}
		}
	}()
	fn()
}
