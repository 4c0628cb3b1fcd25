package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/recurrence"
)

// EventRepo is the write-behind mirror internal/model.Index calls on every
// mutation (model.Store), and the replay source the host reads from at
// startup (spec.md §4.F).
type EventRepo struct {
	db *sql.DB
}

// patternDoc is the JSON-serialized form of a recurrence.Pattern. The
// anchor instant is not stored here: by spec.md §3's invariant, a
// recurring event's own Time is the pattern's anchor, so it is
// reconstructed from the owning event row on load.
type patternDoc struct {
	Freq     recurrence.Frequency `json:"freq"`
	Interval int                  `json:"interval"`
	Weekdays []time.Weekday       `json:"weekdays,omitempty"`
	MaxCount int                  `json:"max_count"`
	End      time.Time            `json:"end"`
}

// SaveEvent inserts or replaces the row for e. It satisfies model.Store.
func (r *EventRepo) SaveEvent(e *model.Event) error {
	patternJSON := ""
	if e.IsRecurring() {
		doc := patternDoc{
			Freq:     e.Pattern.Frequency(),
			Interval: e.Pattern.Interval(),
			Weekdays: e.Pattern.Weekdays(),
			MaxCount: e.Pattern.MaxOccurrences(),
			End:      e.Pattern.End(),
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("sqlite: marshal pattern: %w", err)
		}
		patternJSON = string(b)
	}

	_, err := r.db.Exec(`
		INSERT INTO events (id, title, description, category, time, duration, notifier_name, action_name, recurring, pattern_json, deleted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, description=excluded.description, category=excluded.category,
			time=excluded.time, duration=excluded.duration, notifier_name=excluded.notifier_name,
			action_name=excluded.action_name, recurring=excluded.recurring, pattern_json=excluded.pattern_json,
			deleted=0, updated_at=excluded.updated_at
	`, e.ID, e.Title, e.Description, e.Category, e.Time.UTC().Unix(), int64(e.Duration/time.Second),
		e.NotifierName, e.ActionName, boolToInt(e.IsRecurring()), patternJSON,
		e.CreatedAt.UTC().Unix(), e.UpdatedAt.UTC().Unix())
	if err != nil {
		return fmt.Errorf("sqlite: save event %s: %w", e.ID, err)
	}
	return nil
}

// DeleteEvent hard-deletes the row for id. It satisfies model.Store; the
// soft-delete mirror (model.Index.deleted) is purely in-memory, matching
// spec.md §3's description of the two mirrors as distinct collections.
func (r *EventRepo) DeleteEvent(id string) error {
	if _, err := r.db.Exec(`DELETE FROM events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("sqlite: delete event %s: %w", id, err)
	}
	return nil
}

// RemoveAll deletes every row of the events table.
func (r *EventRepo) RemoveAll() error {
	_, err := r.db.Exec(`DELETE FROM events`)
	return err
}

// List returns every persisted event, ordered by time, for startup replay.
func (r *EventRepo) List() ([]*model.Event, error) {
	rows, err := r.db.Query(`
		SELECT id, title, description, category, time, duration, notifier_name, action_name, recurring, pattern_json, created_at, updated_at
		FROM events ORDER BY time ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(rows rowScanner) (*model.Event, error) {
	var (
		e                      model.Event
		timeSec, durSec        int64
		createdSec, updatedSec int64
		recurringInt           int
		patternJSON            string
	)
	if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &timeSec, &durSec,
		&e.NotifierName, &e.ActionName, &recurringInt, &patternJSON, &createdSec, &updatedSec); err != nil {
		return nil, fmt.Errorf("sqlite: scan event: %w", err)
	}

	e.Time = time.Unix(timeSec, 0).UTC()
	e.Duration = time.Duration(durSec) * time.Second
	e.CreatedAt = time.Unix(createdSec, 0).UTC()
	e.UpdatedAt = time.Unix(updatedSec, 0).UTC()

	if recurringInt != 0 && patternJSON != "" {
		var doc patternDoc
		if err := json.Unmarshal([]byte(patternJSON), &doc); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal pattern for %s: %w", e.ID, err)
		}
		pattern, err := recurrence.New(doc.Freq, e.Time, recurrence.Options{
			Interval: doc.Interval,
			Weekdays: doc.Weekdays,
			MaxCount: doc.MaxCount,
			End:      doc.End,
		})
		if err != nil {
			return nil, fmt.Errorf("sqlite: rebuild pattern for %s: %w", e.ID, err)
		}
		e.Pattern = pattern
	}

	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
