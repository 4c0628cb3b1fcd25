package httpapi

import (
	"fmt"
	"time"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/recurrence"
)

// wireTimeLayout is spec.md §6's wire format for Event.Time: local time,
// no seconds, no offset.
const wireTimeLayout = "2006-01-02 15:04"

// LocalTime marshals/unmarshals as spec.md §6's "YYYY-MM-DD HH:MM" local
// wall-clock string.
type LocalTime time.Time

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(wireTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("httpapi: empty time")
	}
	parsed, err := time.ParseInLocation(wireTimeLayout, string(b[1:len(b)-1]), time.Local)
	if err != nil {
		return fmt.Errorf("httpapi: invalid time %q: %w", string(b), err)
	}
	*t = LocalTime(parsed)
	return nil
}

// RecurrenceWire is the wire form of a recurrence.Pattern.
type RecurrenceWire struct {
	Frequency recurrence.Frequency `json:"frequency"`
	Interval  int                  `json:"interval"`
	Weekdays  []int                `json:"weekdays,omitempty"` // 0=Sunday ... 6=Saturday
	MaxCount  int                  `json:"max_count,omitempty"`
	End       *LocalTime           `json:"end,omitempty"`
}

// EventWire is the JSON shape of Event described in spec.md §6.
type EventWire struct {
	ID           string          `json:"id,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Time         LocalTime       `json:"time"`
	DurationSec  int64           `json:"duration"`
	Category     string          `json:"category"`
	Recurring    bool            `json:"recurring,omitempty"`
	Recurrence   *RecurrenceWire `json:"recurrence,omitempty"`
	NotifierName string          `json:"notifier_name,omitempty"`
	ActionName   string          `json:"action_name,omitempty"`
}

// ToEvent converts the wire form into a model.Event. id, when empty, is
// left for the caller to assign.
func (w EventWire) ToEvent() (*model.Event, error) {
	e := &model.Event{
		ID:           w.ID,
		Title:        w.Title,
		Description:  w.Description,
		Time:         time.Time(w.Time),
		Duration:     time.Duration(w.DurationSec) * time.Second,
		Category:     w.Category,
		NotifierName: w.NotifierName,
		ActionName:   w.ActionName,
	}
	if w.Recurring {
		if w.Recurrence == nil {
			return nil, fmt.Errorf("httpapi: recurring event requires a recurrence pattern")
		}
		opts := recurrence.Options{
			Interval: w.Recurrence.Interval,
			MaxCount: w.Recurrence.MaxCount,
		}
		for _, wd := range w.Recurrence.Weekdays {
			opts.Weekdays = append(opts.Weekdays, time.Weekday(wd))
		}
		if w.Recurrence.End != nil {
			opts.End = time.Time(*w.Recurrence.End)
		}
		pattern, err := recurrence.New(w.Recurrence.Frequency, e.Time, opts)
		if err != nil {
			return nil, err
		}
		e.Pattern = pattern
	}
	return e, nil
}

// EventFromModel converts a model.Event into its wire form.
func EventFromModel(e *model.Event) EventWire {
	w := EventWire{
		ID: e.ID, Title: e.Title, Description: e.Description,
		Time: LocalTime(e.Time.Local()), DurationSec: int64(e.Duration / time.Second),
		Category: e.Category, NotifierName: e.NotifierName, ActionName: e.ActionName,
	}
	if e.IsRecurring() {
		w.Recurring = true
		rw := &RecurrenceWire{
			Frequency: e.Pattern.Frequency(),
			Interval:  e.Pattern.Interval(),
			MaxCount:  e.Pattern.MaxOccurrences(),
		}
		for _, wd := range e.Pattern.Weekdays() {
			rw.Weekdays = append(rw.Weekdays, int(wd))
		}
		if end := e.Pattern.End(); !end.IsZero() {
			lt := LocalTime(end.Local())
			rw.End = &lt
		}
		w.Recurrence = rw
	}
	return w
}

// OccurrenceWire is the wire form of a model.Occurrence — an event plus the
// concrete instant it falls on, used by occurrence-expanding endpoints.
type OccurrenceWire struct {
	EventWire
	OccurrenceTime LocalTime `json:"occurrence_time"`
}

func occurrenceFromModel(o model.Occurrence) OccurrenceWire {
	return OccurrenceWire{
		EventWire:      EventFromModel(o.Event),
		OccurrenceTime: LocalTime(o.Time.Local()),
	}
}

func occurrencesFromModel(occ []model.Occurrence) []OccurrenceWire {
	out := make([]OccurrenceWire, 0, len(occ))
	for _, o := range occ {
		out = append(out, occurrenceFromModel(o))
	}
	return out
}

// TimeSlotWire is spec.md §6's TimeSlot wire shape.
type TimeSlotWire struct {
	Start          LocalTime `json:"start"`
	End            LocalTime `json:"end"`
	DurationMinute int       `json:"duration_minutes"`
}

func timeSlotFromModel(s model.TimeSlot) TimeSlotWire {
	return TimeSlotWire{
		Start:          LocalTime(s.Start.Local()),
		End:            LocalTime(s.End.Local()),
		DurationMinute: int(s.Duration() / time.Minute),
	}
}
