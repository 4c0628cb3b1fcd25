package sqlite_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/recurrence"
	"github.com/ostepan8/scheduled/internal/store/sqlite"
)

func openTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scheduled.db")
	db, err := sqlite.Open(sqlite.Config{Path: path})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEventRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)

	e := &model.Event{
		ID: "e1", Title: "Standup", Description: "daily sync", Category: "work",
		Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Duration: 30 * time.Minute,
		NotifierName: "console", ActionName: "log",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.Events.SaveEvent(e))

	listed, err := db.Events.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "e1", listed[0].ID)
	assert.Equal(t, "Standup", listed[0].Title)
	assert.Equal(t, "console", listed[0].NotifierName)
	assert.True(t, e.Time.Equal(listed[0].Time))

	require.NoError(t, db.Events.DeleteEvent("e1"))
	listed, err = db.Events.List()
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestEventRepoPersistsRecurrencePattern(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	pattern, err := recurrence.New(recurrence.Weekly, start, recurrence.Options{
		Interval: 1,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		MaxCount: 5,
	})
	require.NoError(t, err)

	e := &model.Event{ID: "standup", Title: "Standup", Time: start, Duration: 30 * time.Minute, Pattern: pattern}
	require.NoError(t, db.Events.SaveEvent(e))

	listed, err := db.Events.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Pattern)
	assert.Equal(t, recurrence.Weekly, listed[0].Pattern.Frequency())
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, listed[0].Pattern.Weekdays())
	assert.Equal(t, 5, listed[0].Pattern.MaxOccurrences())

	occ := listed[0].Pattern.NextOccurrences(start.Add(-time.Second), 2)
	require.Len(t, occ, 2)
	assert.Equal(t, start, occ[0])
}

func TestSettingsRepoRoundTrip(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.Settings.SaveSetting("wake.baseline_time", "14:00"))
	require.NoError(t, db.Settings.SaveSetting("wake.lead_minutes", "45"))

	loaded, err := db.Settings.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "14:00", loaded["wake.baseline_time"])
	assert.Equal(t, "45", loaded["wake.lead_minutes"])

	require.NoError(t, db.Settings.SaveSetting("wake.baseline_time", "15:30"))
	loaded, err = db.Settings.LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "15:30", loaded["wake.baseline_time"])
}

func TestModelIndexMirrorsToSQLite(t *testing.T) {
	db := openTestDB(t)
	idx := model.New(db.Events)

	e := &model.Event{ID: "e1", Title: "Standup", Time: time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), Duration: time.Hour, Category: "task"}
	require.NoError(t, idx.Add(e))

	listed, err := db.Events.List()
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, idx.Remove("e1", false))
	listed, err = db.Events.List()
	require.NoError(t, err)
	assert.Empty(t, listed)
}
