package scheduler_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostepan8/scheduled/internal/scheduler"
	"github.com/ostepan8/scheduled/internal/task"
)

// fakeClock lets tests fast-forward "now" past every queued task's time so
// the loop drains immediately instead of sleeping in real time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func waitForLen(t *testing.T, r *recorder, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(r.snapshot()) >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d events, got %v", n, r.snapshot())
}

func TestNotificationBeforeExecution(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	loop := scheduler.New(scheduler.WithClock(clock))
	loop.Start()
	defer loop.Stop()

	rec := &recorder{}
	execAt := clock.Now().Add(time.Hour)
	tk := task.New("t1", "", "", "cat", execAt, time.Minute, clock.Now(),
		[]time.Time{execAt.Add(-30 * time.Minute)},
		func() { rec.record("notify") },
		func() { rec.record("execute") },
	)
	loop.AddTask(tk)

	// Advance clock to the notify instant and nudge the loop.
	clock.Set(execAt.Add(-29 * time.Minute))
	loop.AddTask(task.New("nop", "", "", "internal", execAt.Add(time.Hour*100), time.Minute, clock.Now(), nil, nil, func() {}))
	waitForLen(t, rec, 1)
	assert.Equal(t, []string{"notify"}, rec.snapshot())

	clock.Set(execAt.Add(time.Minute))
	loop.AddTask(task.New("nop2", "", "", "internal", execAt.Add(time.Hour*200), time.Minute, clock.Now(), nil, nil, func() {}))
	waitForLen(t, rec, 2)
	assert.Equal(t, []string{"notify", "execute"}, rec.snapshot())
}

func TestStaleTaskIsDropped(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	currentTimes := map[string]time.Time{
		"t1": clock.Now().Add(2 * time.Hour), // model has a later time than the queued copy
	}
	source := eventSourceFunc(func(id string) (time.Time, bool) {
		ct, ok := currentTimes[id]
		return ct, ok
	})

	loop := scheduler.New(scheduler.WithClock(clock), scheduler.WithEventSource(source))
	loop.Start()
	defer loop.Stop()

	rec := &recorder{}
	staleTime := clock.Now().Add(time.Hour) // stale: model says +2h, this says +1h
	loop.AddTask(task.New("t1", "", "", "work", staleTime, time.Minute, clock.Now(), nil, nil, func() { rec.record("execute-stale") }))

	clock.Set(staleTime.Add(time.Minute))
	loop.AddTask(task.New("nop", "", "", "internal", staleTime.Add(time.Hour*50), time.Minute, clock.Now(), nil, nil, func() {}))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "stale queue entry must not execute")
	assert.Equal(t, 1, loop.Len(), "the nop keep-alive task should remain queued")
}

func TestAbsentTaskIsDropped(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))

	// CurrentTime reports "no such live event" for every id,
	// simulating a hard-deleted event whose task is still queued.
	source := eventSourceFunc(func(id string) (time.Time, bool) { return time.Time{}, false })

	loop := scheduler.New(scheduler.WithClock(clock), scheduler.WithEventSource(source))
	loop.Start()
	defer loop.Stop()

	rec := &recorder{}
	at := clock.Now().Add(time.Hour)
	loop.AddTask(task.New("gone", "", "", "work", at, time.Minute, clock.Now(), nil, nil, func() { rec.record("execute-absent") }))

	clock.Set(at.Add(time.Minute))
	loop.AddTask(task.New("nop", "", "", "internal", at.Add(time.Hour*50), time.Minute, clock.Now(), nil, nil, func() {}))

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot(), "queue entry for a deleted event must not execute")
	assert.Equal(t, 1, loop.Len(), "the nop keep-alive task should remain queued")
}

type eventSourceFunc func(id string) (time.Time, bool)

func (f eventSourceFunc) CurrentTime(id string) (time.Time, bool) { return f(id) }

func TestAddTaskWakesSleepingLoop(t *testing.T) {
	clock := newFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	loop := scheduler.New(scheduler.WithClock(clock))
	loop.Start()
	defer loop.Stop()

	require.Equal(t, 0, loop.Len())
	loop.AddTask(task.New("t1", "", "", "internal", clock.Now().Add(time.Hour), time.Minute, clock.Now(), nil, nil, func() {}))
	require.Eventually(t, func() bool { return loop.Len() == 1 }, time.Second, time.Millisecond)

	// The worker now sleeps on t1's timer, an hour of real time away. A task
	// that is already due runs promptly only if AddTask wakes the worker.
	rec := &recorder{}
	loop.AddTask(task.New("t2", "", "", "internal", clock.Now(), time.Minute, clock.Now(), nil, nil, func() { rec.record("t2") }))
	waitForLen(t, rec, 1)
}
