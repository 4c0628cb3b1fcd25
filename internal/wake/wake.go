// Package wake computes and schedules the daily "wake" task (component E):
// a single internal-category ScheduledTask that, when executed, posts a
// payload to an external endpoint ahead of the day's earliest event.
package wake

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ostepan8/scheduled/internal/metrics"
	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/scheduler"
	"github.com/ostepan8/scheduled/internal/settings"
	"github.com/ostepan8/scheduled/internal/task"
)

// Settings keys read by the wake scheduler.
const (
	KeyEnabled        = "wake.enabled"
	KeyBaselineTime   = "wake.baseline_time"
	KeyLeadMinutes    = "wake.lead_minutes"
	KeyOnlyWhenEvents = "wake.only_when_events"
	KeySkipWeekends   = "wake.skip_weekends"
	KeyServerURL      = "wake.server_url"
	KeyUserID         = "user.id"
	KeyUserTimezone   = "user.timezone"

	defaultBaselineTime = "14:00"
	defaultLeadMinutes  = 45

	// InternalCategory marks tasks (the wake task and its daily
	// maintenance renewal) that bypass the durable model entirely.
	InternalCategory = "internal"

	maintenanceTaskID = "wake:maintenance"
)

// Reason explains why computeWakeTime produced the time (or skip) it did.
type Reason string

const (
	ReasonBaseline          Reason = "baseline"
	ReasonEarliestMinusLead Reason = "earliest-minus-lead"
	ReasonNoEventsSkip      Reason = "no-events-skip"
	ReasonWeekendSkip       Reason = "weekend-skip"
)

// Payload is the JSON body POSTed to the configured wake server URL.
type Payload struct {
	UserID    string    `json:"user_id"`
	WakeTime  time.Time `json:"wake_time"`
	Timezone  string    `json:"timezone"`
	Context   Context   `json:"context"`
}

// Context carries the diagnostic/explanatory fields alongside Payload.
type Context struct {
	Source        string        `json:"source"`
	Reason        Reason        `json:"reason"`
	BaselineTime  string        `json:"baseline_time"`
	LeadMinutes   int           `json:"lead_minutes"`
	Date          string        `json:"date"`
	JobID         string        `json:"job_id"`
	EarliestEvent *EarliestRef  `json:"earliest_event"`
	FirstEvents   []FirstEvent  `json:"first_events"`
}

// EarliestRef summarizes the day's earliest event for the wake payload.
type EarliestRef struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Start       time.Time `json:"start"`
	DurationSec int64     `json:"duration_sec"`
}

// FirstEvent is the abbreviated per-event summary in Context.FirstEvents
// (spec.md §6's {id,title,start} triples, up to the first three of the day).
type FirstEvent struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
}

// Poster sends a computed Payload to the external wake endpoint.
type Poster interface {
	PostWake(ctx context.Context, url string, payload Payload) error
}

// Scheduler computes and enqueues the daily wake task.
type Scheduler struct {
	model    *model.Index
	loop     *scheduler.Loop
	settings *settings.Store
	poster   Poster
	clock    scheduler.Clock
	loc      *time.Location
	logger   *slog.Logger
}

// New builds a Scheduler using loc for local-day/local-time computations
// (e.g. time.Local, or a configured user.timezone).
func New(m *model.Index, loop *scheduler.Loop, st *settings.Store, poster Poster, clock scheduler.Clock, loc *time.Location) *Scheduler {
	if clock == nil {
		clock = scheduler.RealClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{model: m, loop: loop, settings: st, poster: poster, clock: clock, loc: loc, logger: slog.Default()}
}

// WithLogger overrides the Scheduler's logger (default slog.Default()).
func (s *Scheduler) WithLogger(logger *slog.Logger) *Scheduler {
	s.logger = logger
	return s
}

func (s *Scheduler) localMidnight(t time.Time) time.Time {
	t = t.In(s.loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

func (s *Scheduler) parseLocalHM(day time.Time, hm string) time.Time {
	hh, mm := 2, 0
	fmt.Sscanf(hm, "%d:%d", &hh, &mm)
	day = s.localMidnight(day)
	return day.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
}

// computeWakeTime is the pure decision function: given a local calendar
// day, decide the wake instant (or report it should be skipped) without
// mutating anything.
func (s *Scheduler) computeWakeTime(day time.Time) (wakeTime time.Time, reason Reason, firstEvents []*model.Event) {
	baselineStr := s.settings.GetString(KeyBaselineTime, defaultBaselineTime)
	lead := s.settings.GetInt(KeyLeadMinutes, defaultLeadMinutes)
	onlyWhenEvents := s.settings.GetBool(KeyOnlyWhenEvents, false)
	skipWeekends := s.settings.GetBool(KeySkipWeekends, false)

	base := s.parseLocalHM(day, baselineStr)

	occurrences := s.model.OnDay(day)
	for i := 0; i < len(occurrences) && i < 3; i++ {
		firstEvents = append(firstEvents, occurrences[i].Event)
	}

	if len(occurrences) == 0 {
		if onlyWhenEvents {
			return time.Time{}, ReasonNoEventsSkip, nil
		}
		if skipWeekends {
			wd := s.localMidnight(day).Weekday()
			if wd == time.Sunday || wd == time.Saturday {
				return time.Time{}, ReasonWeekendSkip, nil
			}
		}
		return base, ReasonBaseline, nil
	}

	earliest := occurrences[0].Time
	candidate := earliest.Add(-time.Duration(lead) * time.Minute)
	if onlyWhenEvents {
		return candidate, ReasonEarliestMinusLead, firstEvents
	}
	if earliest.Before(base) {
		return candidate, ReasonEarliestMinusLead, firstEvents
	}
	return base, ReasonBaseline, firstEvents
}

// PreviewForDate computes the wake decision for day without scheduling
// anything.
func (s *Scheduler) PreviewForDate(day time.Time) (wakeTime time.Time, reason Reason, firstEvents []*model.Event) {
	return s.computeWakeTime(day)
}

// ScheduleForDate computes and enqueues the wake task for day, replacing
// any previously queued wake task for that same date.
func (s *Scheduler) ScheduleForDate(day time.Time) {
	if !s.settings.GetBool(KeyEnabled, true) {
		return
	}

	wakeTime, reason, firstEvents := s.computeWakeTime(day)
	if wakeTime.IsZero() {
		return
	}
	if !wakeTime.After(s.clock.Now()) {
		return
	}

	jobID := wakeJobID(day)
	payload := s.buildPayload(day, wakeTime, reason, firstEvents)

	t := task.New(jobID, "Wake", "scheduled wake task", InternalCategory, wakeTime, time.Minute, s.clock.Now(), nil, nil, func() {
		s.executeWake(payload)
	})
	s.loop.AddOrReplace(t)
	metrics.WakeJobsScheduledTotal.WithLabelValues(string(reason)).Inc()
}

// ScheduleToday schedules (or re-schedules) today's wake task.
func (s *Scheduler) ScheduleToday() {
	now := s.clock.Now().In(s.loc)
	s.ScheduleForDate(s.localMidnight(now))
}

// ScheduleDailyMaintenance enqueues a self-renewing internal task that
// fires at the next local midnight, reschedules today's (now tomorrow's)
// wake task, and re-enqueues itself for the following midnight.
func (s *Scheduler) ScheduleDailyMaintenance() {
	now := s.clock.Now().In(s.loc)
	next := s.localMidnight(now).AddDate(0, 0, 1)

	var again func()
	again = func() {
		s.ScheduleToday()
		s.scheduleMaintenanceAt(s.localMidnight(s.clock.Now().In(s.loc)).AddDate(0, 0, 1), again)
	}
	s.scheduleMaintenanceAt(next, again)
}

func (s *Scheduler) scheduleMaintenanceAt(at time.Time, action func()) {
	t := task.New(maintenanceTaskID, "Wake maintenance", "daily wake rescheduling", InternalCategory, at, time.Minute, s.clock.Now(), nil, nil, action)
	s.loop.AddOrReplace(t)
}

func wakeJobID(day time.Time) string {
	return fmt.Sprintf("wake:%s", day.Format("2006-01-02"))
}

func (s *Scheduler) buildPayload(day, wakeTime time.Time, reason Reason, firstEvents []*model.Event) Payload {
	userID := s.settings.GetString(KeyUserID, os.Getenv("USER_ID"))
	if userID == "" {
		userID = "unknown"
	}
	tzName := s.settings.GetString(KeyUserTimezone, os.Getenv("USER_TIMEZONE"))
	if tzName == "" {
		tzName = s.loc.String()
	}

	ctx := Context{
		Source:       "scheduler",
		Reason:       reason,
		BaselineTime: s.settings.GetString(KeyBaselineTime, defaultBaselineTime),
		LeadMinutes:  s.settings.GetInt(KeyLeadMinutes, defaultLeadMinutes),
		Date:         day.Format("2006-01-02"),
		JobID:        wakeJobID(day),
	}
	if len(firstEvents) > 0 {
		e := firstEvents[0]
		ctx.EarliestEvent = &EarliestRef{
			ID: e.ID, Title: e.Title, Description: e.Description,
			Start: e.Time, DurationSec: int64(e.Duration / time.Second),
		}
	}
	for _, e := range firstEvents {
		ctx.FirstEvents = append(ctx.FirstEvents, FirstEvent{ID: e.ID, Title: e.Title, Start: e.Time})
	}

	return Payload{
		UserID:   userID,
		WakeTime: wakeTime,
		Timezone: tzName,
		Context:  ctx,
	}
}

func (s *Scheduler) executeWake(payload Payload) {
	url := s.settings.GetString(KeyServerURL, "")
	if url == "" || s.poster == nil {
		return
	}
	if err := s.poster.PostWake(context.Background(), url, payload); err != nil {
		metrics.WakePostFailuresTotal.Inc()
		s.logger.Error("wake: delivery failed", "job_id", payload.Context.JobID, "error", err)
	}
}
