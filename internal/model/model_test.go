package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/recurrence"
)

func mustPattern(t *testing.T, freq recurrence.Frequency, start time.Time, opts recurrence.Options) *recurrence.Pattern {
	t.Helper()
	p, err := recurrence.New(freq, start, opts)
	require.NoError(t, err)
	return p
}

func TestAddGetRemoveRestore(t *testing.T) {
	idx := model.New(nil)
	e := &model.Event{ID: "e1", Title: "Standup", Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Duration: 30 * time.Minute, Category: "work"}

	require.NoError(t, idx.Add(e))
	assert.ErrorIs(t, idx.Add(e), model.ErrAlreadyExists)

	got, err := idx.GetByID("e1")
	require.NoError(t, err)
	assert.Equal(t, "Standup", got.Title)

	require.NoError(t, idx.Remove("e1", true))
	_, err = idx.GetByID("e1")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Len(t, idx.DeletedEvents(), 1)

	require.NoError(t, idx.Restore("e1"))
	_, err = idx.GetByID("e1")
	require.NoError(t, err)
	assert.Empty(t, idx.DeletedEvents())
}

func TestPatchPartialUpdate(t *testing.T) {
	idx := model.New(nil)
	e := &model.Event{ID: "e1", Title: "Standup", Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Duration: 30 * time.Minute, Category: "work"}
	require.NoError(t, idx.Add(e))

	newTitle := "Daily Standup"
	require.NoError(t, idx.Patch("e1", model.PatchFields{Title: &newTitle}))

	got, err := idx.GetByID("e1")
	require.NoError(t, err)
	assert.Equal(t, "Daily Standup", got.Title)
	assert.Equal(t, "work", got.Category) // untouched
}

func TestOnDayDoesNotExpandRecurring(t *testing.T) {
	idx := model.New(nil)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // Monday
	p := mustPattern(t, recurrence.Weekly, start, recurrence.Options{Interval: 1, Weekdays: []time.Weekday{time.Monday, time.Wednesday}})
	require.NoError(t, idx.Add(&model.Event{ID: "standup", Time: start, Duration: 30 * time.Minute, Pattern: p}))

	// OnDay reports only the event's own anchor instant, not expanded
	// occurrences, matching the source model's convenience-query behavior.
	occ := idx.OnDay(start)
	require.Len(t, occ, 1)
	assert.Equal(t, start, occ[0].Time)

	occ = idx.OnDay(time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)) // Wednesday: anchor doesn't fall here
	assert.Empty(t, occ)
}

func TestRangeExpandedWalksRecurringOccurrences(t *testing.T) {
	idx := model.New(nil)
	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC) // Monday
	p := mustPattern(t, recurrence.Weekly, start, recurrence.Options{Interval: 1, Weekdays: []time.Weekday{time.Monday, time.Wednesday}})
	require.NoError(t, idx.Add(&model.Event{ID: "standup", Time: start, Duration: 30 * time.Minute, Pattern: p}))

	occ := idx.RangeExpanded(time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC), time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC))
	require.Len(t, occ, 1)
	assert.Equal(t, time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC), occ[0].Time)
}

func TestConflictsDetectsOverlap(t *testing.T) {
	idx := model.New(nil)
	require.NoError(t, idx.Add(&model.Event{
		ID: "e1", Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Duration: time.Hour,
	}))

	conflicts := idx.Conflicts(time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC), time.Hour)
	assert.Len(t, conflicts, 1)

	none := idx.Conflicts(time.Date(2025, 6, 2, 11, 0, 0, 0, time.UTC), time.Hour)
	assert.Empty(t, none)
}

func TestFreeSlotsSubtractsBusyTime(t *testing.T) {
	idx := model.New(nil)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, idx.Add(&model.Event{
		ID: "e1", Time: day.Add(10 * time.Hour), Duration: time.Hour,
	}))

	slots := idx.FreeSlots(day, 9, 17, 30*time.Minute)
	require.Len(t, slots, 2)
	assert.Equal(t, day.Add(9*time.Hour), slots[0].Start)
	assert.Equal(t, day.Add(10*time.Hour), slots[0].End)
	assert.Equal(t, day.Add(11*time.Hour), slots[1].Start)
	assert.Equal(t, day.Add(17*time.Hour), slots[1].End)
}

func TestNextFreeSkipsBusyDay(t *testing.T) {
	idx := model.New(nil)
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for h := 9; h < 17; h++ {
		require.NoError(t, idx.Add(&model.Event{
			ID: fmt.Sprintf("busy%d", h), Time: day.Add(time.Duration(h) * time.Hour), Duration: time.Hour, Category: "work",
		}))
	}

	slot, ok := idx.NextFree(time.Hour, day.Add(8*time.Hour), 9, 17)
	require.True(t, ok)
	assert.True(t, slot.Start.After(day.AddDate(0, 0, 1)) || slot.Start.Equal(day.AddDate(0, 0, 1).Add(9*time.Hour)))
}

func TestStatsAggregates(t *testing.T) {
	idx := model.New(nil)
	day := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, idx.Add(&model.Event{ID: "e1", Time: day, Duration: 30 * time.Minute, Category: "work"}))
	require.NoError(t, idx.Add(&model.Event{ID: "e2", Time: day.Add(2 * time.Hour), Duration: time.Hour, Category: "personal"}))

	stats := idx.Stats(day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	assert.Equal(t, 2, stats.TotalEvents)
	assert.Equal(t, 90, stats.TotalMinutes)
	assert.Equal(t, 1, stats.ByCategory["work"])
	assert.Equal(t, 1, stats.ByCategory["personal"])
}
