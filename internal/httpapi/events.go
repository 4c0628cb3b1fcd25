package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostepan8/scheduled/internal/apperr"
	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/task"
)

// defaultNotifyLead is how far ahead of execution a freshly created
// category=task event's single notification fires, mirroring the 10-minute
// lead spec.md §4.F specifies for replayed events.
const defaultNotifyLead = 10 * time.Minute

// createEvent handles POST /events.
func (s *Server) createEvent(c *gin.Context) {
	var wire EventWire
	if err := c.ShouldBindJSON(&wire); err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	e, err := wire.ToEvent()
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	if e.ID == "" {
		id, err := s.Model.NewID()
		if err != nil {
			fail(c, apperr.Wrap(apperr.KindStoreError, err, "generating event id"))
			return
		}
		e.ID = id
	}
	now := time.Now()
	e.CreatedAt, e.UpdatedAt = now, now

	var tk *task.ScheduledTask
	if e.Category == "task" {
		var err error
		tk, err = s.resolveTask(e, defaultNotifyLead)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
	}

	if err := s.Model.Add(e); err != nil {
		fail(c, err)
		return
	}

	if tk != nil {
		s.Loop.AddTask(tk)
	}

	created(c, EventFromModel(e))
}

// getEvent handles GET /events/:id.
func (s *Server) getEvent(c *gin.Context) {
	e, err := s.Model.GetByID(c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, EventFromModel(e))
}

// replaceEvent handles PUT /events/:id.
func (s *Server) replaceEvent(c *gin.Context) {
	id := c.Param("id")
	var wire EventWire
	if err := c.ShouldBindJSON(&wire); err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	e, err := wire.ToEvent()
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	var tk *task.ScheduledTask
	if e.Category == "task" {
		var err error
		tk, err = s.resolveTask(e, defaultNotifyLead)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
	}

	if err := s.Model.Update(id, e); err != nil {
		fail(c, err)
		return
	}

	if tk != nil {
		s.Loop.AddTask(tk)
	}

	ok(c, EventFromModel(e))
}

// patchFieldsWire is the JSON shape PATCH /events/:id accepts: title,
// description, category, time and duration are applied when present and
// left untouched when absent. A recurrence object is decoded but not
// applied; PATCH never changes an event's pattern.
type patchFieldsWire struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Category    *string         `json:"category"`
	Time        *LocalTime      `json:"time"`
	DurationSec *int64          `json:"duration"`
	Recurrence  *RecurrenceWire `json:"recurrence"`
}

// patchEvent handles PATCH /events/:id.
func (s *Server) patchEvent(c *gin.Context) {
	id := c.Param("id")
	var wire patchFieldsWire
	if err := c.ShouldBindJSON(&wire); err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	fields := model.PatchFields{
		Title:       wire.Title,
		Description: wire.Description,
		Category:    wire.Category,
	}
	if wire.Time != nil {
		t := time.Time(*wire.Time)
		fields.Time = &t
	}
	if wire.DurationSec != nil {
		d := time.Duration(*wire.DurationSec) * time.Second
		fields.Duration = &d
	}

	if err := s.Model.Patch(id, fields); err != nil {
		fail(c, err)
		return
	}

	e, err := s.Model.GetByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	if e.Category == "task" {
		tk, err := s.resolveTask(e, defaultNotifyLead)
		if err != nil {
			s.Logger.Error("patch: leaving task unqueued, notifier/action no longer resolves", "id", e.ID, "error", err)
		} else {
			s.Loop.AddTask(tk)
		}
	}
	ok(c, EventFromModel(e))
}

// deleteEvent handles DELETE /events/:id?soft=true.
func (s *Server) deleteEvent(c *gin.Context) {
	soft := c.Query("soft") == "true"
	if err := s.Model.Remove(c.Param("id"), soft); err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"id": c.Param("id"), "soft_deleted": soft})
}

// restoreEvent handles POST /events/:id/restore.
func (s *Server) restoreEvent(c *gin.Context) {
	id := c.Param("id")
	if err := s.Model.Restore(id); err != nil {
		fail(c, err)
		return
	}
	e, err := s.Model.GetByID(id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, EventFromModel(e))
}

// listEvents handles GET /events, dispatching on query params to whichever
// of listAll/onDay/inWeek/inMonth/byCategory/search the caller asked for
// (spec.md §6's illustrative surface, collapsed onto one route as in
// SPEC_FULL.md's route table).
func (s *Server) listEvents(c *gin.Context) {
	switch {
	case c.Query("day") != "":
		day, err := parseDate(c.Query("day"))
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
		ok(c, occurrencesFromModel(s.Model.OnDay(day)))
	case c.Query("week") != "":
		day, err := parseDate(c.Query("week"))
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
		ok(c, occurrencesFromModel(s.Model.InWeek(day)))
	case c.Query("month") != "":
		day, err := parseDate(c.Query("month"))
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
		ok(c, occurrencesFromModel(s.Model.InMonth(day)))
	case c.Query("category") != "":
		ok(c, eventsFromModel(s.Model.ByCategory(c.Query("category"))))
	case c.Query("q") != "":
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		ok(c, eventsFromModel(s.Model.Search(c.Query("q"), limit)))
	default:
		ok(c, eventsFromModel(s.Model.ListAll()))
	}
}

func eventsFromModel(events []*model.Event) []EventWire {
	out := make([]EventWire, 0, len(events))
	for _, e := range events {
		out = append(out, EventFromModel(e))
	}
	return out
}

// next handles GET /events/next, or GET /events/next?n= for getNextN.
func (s *Server) next(c *gin.Context) {
	if v := c.Query("n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fail(c, apperr.New(apperr.KindInvalidInput, "n must be a non-negative integer"))
			return
		}
		ok(c, occurrencesFromModel(s.Model.GetNextN(time.Now(), n)))
		return
	}

	o, err := s.Model.GetNext(time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, occurrenceFromModel(*o))
}

// rangeExpanded handles GET /events/range?start=&end=.
func (s *Server) rangeExpanded(c *gin.Context) {
	start, end, err := parseRange(c)
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	ok(c, occurrencesFromModel(s.Model.RangeExpanded(start, end)))
}

// conflicts handles GET /events/conflicts?time=&duration=.
func (s *Server) conflicts(c *gin.Context) {
	at, dur, err := parseTimeAndDuration(c)
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	ok(c, occurrencesFromModel(s.Model.Conflicts(at, dur)))
}

// validate handles GET /events/validate?time=&duration=.
func (s *Server) validate(c *gin.Context) {
	at, dur, err := parseTimeAndDuration(c)
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	ok(c, gin.H{"valid": s.Model.ValidateEventTime(at, dur)})
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(wireTimeLayout, c.Query("start"), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(wireTimeLayout, c.Query("end"), time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseTimeAndDuration(c *gin.Context) (time.Time, time.Duration, error) {
	at, err := time.ParseInLocation(wireTimeLayout, c.Query("time"), time.Local)
	if err != nil {
		return time.Time{}, 0, err
	}
	minutes, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		return time.Time{}, 0, err
	}
	return at, time.Duration(minutes) * time.Minute, nil
}
