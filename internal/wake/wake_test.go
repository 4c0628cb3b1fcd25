package wake_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/scheduler"
	"github.com/ostepan8/scheduled/internal/settings"
	"github.com/ostepan8/scheduled/internal/wake"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type noopPoster struct{}

func (noopPoster) PostWake(ctx context.Context, url string, payload wake.Payload) error { return nil }

func newHarness(t *testing.T, now time.Time) (*wake.Scheduler, *model.Index, *settings.Store) {
	t.Helper()
	idx := model.New(nil)
	st, err := settings.New(nil)
	require.NoError(t, err)
	loop := scheduler.New(scheduler.WithClock(fixedClock{t: now}))
	ws := wake.New(idx, loop, st, noopPoster{}, fixedClock{t: now}, time.UTC)
	return ws, idx, st
}

func TestComputeWakeTimeBaselineWhenNoEvents(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ws, _, _ := newHarness(t, day)

	wakeTime, reason, _ := ws.PreviewForDate(day)
	assert.Equal(t, wake.ReasonBaseline, reason)
	assert.Equal(t, 14, wakeTime.Hour())
}

func TestComputeWakeTimeEarliestMinusLead(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ws, idx, _ := newHarness(t, day)
	require.NoError(t, idx.Add(&model.Event{ID: "e1", Time: day.Add(9 * time.Hour), Duration: time.Hour}))

	wakeTime, reason, first := ws.PreviewForDate(day)
	assert.Equal(t, wake.ReasonEarliestMinusLead, reason)
	assert.Equal(t, day.Add(9*time.Hour).Add(-45*time.Minute), wakeTime)
	require.Len(t, first, 1)
	assert.Equal(t, "e1", first[0].ID)
}

func TestComputeWakeTimeNoEventsSkip(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ws, _, st := newHarness(t, day)
	require.NoError(t, st.SetBool(wake.KeyOnlyWhenEvents, true))

	wakeTime, reason, _ := ws.PreviewForDate(day)
	assert.Equal(t, wake.ReasonNoEventsSkip, reason)
	assert.True(t, wakeTime.IsZero())
}

func TestComputeWakeTimeWeekendSkip(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) // Sunday
	ws, _, st := newHarness(t, day)
	require.NoError(t, st.SetBool(wake.KeySkipWeekends, true))

	wakeTime, reason, _ := ws.PreviewForDate(day)
	assert.Equal(t, wake.ReasonWeekendSkip, reason)
	assert.True(t, wakeTime.IsZero())
}

func TestComputeWakeTimeBaselineWhenEarlyEventAfterBaseline(t *testing.T) {
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	ws, idx, _ := newHarness(t, day)
	require.NoError(t, idx.Add(&model.Event{ID: "e1", Time: day.Add(18 * time.Hour), Duration: time.Hour}))

	_, reason, _ := ws.PreviewForDate(day)
	assert.Equal(t, wake.ReasonBaseline, reason)
}
