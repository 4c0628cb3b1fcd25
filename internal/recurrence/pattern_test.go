package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostepan8/scheduled/internal/recurrence"
)

func TestMonthlyClampsEndOfMonth(t *testing.T) {
	start := time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Monthly, start, recurrence.Options{Interval: 1})
	require.NoError(t, err)

	occ := p.NextOccurrences(start.Add(-time.Second), 3)
	require.Len(t, occ, 3)
	assert.Equal(t, time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC), occ[0])
	assert.Equal(t, time.Date(2025, time.February, 28, 9, 0, 0, 0, time.UTC), occ[1])
	assert.Equal(t, time.Date(2025, time.March, 31, 9, 0, 0, 0, time.UTC), occ[2])
}

func TestMonthlyClampsLeapYear(t *testing.T) {
	start := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Monthly, start, recurrence.Options{Interval: 1})
	require.NoError(t, err)

	occ := p.NextOccurrences(time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC), 1)
	require.Len(t, occ, 1)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 0, 0, 0, time.UTC), occ[0])
}

func TestWeeklyMultipleDaysInterval(t *testing.T) {
	// Monday 2025-06-02, recurring every week on Mon/Wed, x5.
	start := time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Weekly, start, recurrence.Options{
		Interval: 1,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		MaxCount: 5,
	})
	require.NoError(t, err)

	occ := p.NextOccurrences(start.Add(-time.Second), 10)
	require.Len(t, occ, 5)
	assert.Equal(t, time.June, occ[0].Month())
	assert.Equal(t, 2, occ[0].Day())
	assert.Equal(t, 4, occ[1].Day())
	assert.Equal(t, 9, occ[2].Day())
	assert.Equal(t, 11, occ[3].Day())
	assert.Equal(t, 16, occ[4].Day())
}

func TestIsDueOnRoundTrip(t *testing.T) {
	start := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Daily, start, recurrence.Options{Interval: 2})
	require.NoError(t, err)

	assert.True(t, p.IsDueOn(start))
	assert.True(t, p.IsDueOn(start.AddDate(0, 0, 2)))
	assert.False(t, p.IsDueOn(start.AddDate(0, 0, 1)))
}

func TestMaxOccurrencesBound(t *testing.T) {
	start := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Daily, start, recurrence.Options{Interval: 1, MaxCount: 3})
	require.NoError(t, err)

	occ := p.NextOccurrences(start.Add(-time.Second), 10)
	assert.Len(t, occ, 3)
}

func TestEndDateBound(t *testing.T) {
	start := time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Daily, start, recurrence.Options{Interval: 1, End: end})
	require.NoError(t, err)

	occ := p.NextOccurrences(start.Add(-time.Second), 10)
	assert.Len(t, occ, 3)
}

func TestYearlyLeapDayClamp(t *testing.T) {
	start := time.Date(2024, time.February, 29, 6, 0, 0, 0, time.UTC)
	p, err := recurrence.New(recurrence.Yearly, start, recurrence.Options{Interval: 1})
	require.NoError(t, err)

	occ := p.NextOccurrences(start, 1)
	require.Len(t, occ, 1)
	assert.Equal(t, time.Date(2025, time.February, 28, 6, 0, 0, 0, time.UTC), occ[0])
}

func TestInvalidWeeklyNoDays(t *testing.T) {
	_, err := recurrence.New(recurrence.Weekly, time.Now(), recurrence.Options{Interval: 1})
	assert.ErrorIs(t, err, recurrence.ErrNoWeekdays)
}

func TestUnknownFrequency(t *testing.T) {
	_, err := recurrence.New(recurrence.Frequency("biweekly"), time.Now(), recurrence.Options{Interval: 1})
	assert.ErrorIs(t, err, recurrence.ErrUnknownFrequency)
}
