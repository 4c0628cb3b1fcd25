package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostepan8/scheduled/internal/apperr"
	"github.com/ostepan8/scheduled/internal/wake"
)

// wakeConfigWire is the JSON shape of GET/PUT /wake/config.
type wakeConfigWire struct {
	Enabled        bool   `json:"enabled"`
	BaselineTime   string `json:"baseline_time"`
	LeadMinutes    int    `json:"lead_minutes"`
	OnlyWhenEvents bool   `json:"only_when_events"`
	SkipWeekends   bool   `json:"skip_weekends"`
	ServerURL      string `json:"server_url"`
	UserTimezone   string `json:"user_timezone"`
}

// getWakeConfig handles GET /wake/config.
func (s *Server) getWakeConfig(c *gin.Context) {
	ok(c, wakeConfigWire{
		Enabled:        s.Settings.GetBool(wake.KeyEnabled, true),
		BaselineTime:   s.Settings.GetString(wake.KeyBaselineTime, "14:00"),
		LeadMinutes:    s.Settings.GetInt(wake.KeyLeadMinutes, 45),
		OnlyWhenEvents: s.Settings.GetBool(wake.KeyOnlyWhenEvents, false),
		SkipWeekends:   s.Settings.GetBool(wake.KeySkipWeekends, false),
		ServerURL:      s.Settings.GetString(wake.KeyServerURL, ""),
		UserTimezone:   s.Settings.GetString(wake.KeyUserTimezone, "Local"),
	})
}

// putWakeConfig handles PUT /wake/config (admin-key gated by the router).
func (s *Server) putWakeConfig(c *gin.Context) {
	var wire wakeConfigWire
	if err := c.ShouldBindJSON(&wire); err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	if err := s.Settings.SetBool(wake.KeyEnabled, wire.Enabled); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetString(wake.KeyBaselineTime, wire.BaselineTime); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetInt(wake.KeyLeadMinutes, wire.LeadMinutes); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetBool(wake.KeyOnlyWhenEvents, wire.OnlyWhenEvents); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetBool(wake.KeySkipWeekends, wire.SkipWeekends); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetString(wake.KeyServerURL, wire.ServerURL); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}
	if err := s.Settings.SetString(wake.KeyUserTimezone, wire.UserTimezone); err != nil {
		fail(c, apperr.Wrap(apperr.KindStoreError, err, ""))
		return
	}

	ok(c, wire)
}

// previewWake handles POST /wake/preview/:date.
func (s *Server) previewWake(c *gin.Context) {
	day, err := parseDate(c.Param("date"))
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}

	wakeTime, reason, firstEvents := s.Wake.PreviewForDate(day)
	summaries := make([]gin.H, 0, len(firstEvents))
	for _, e := range firstEvents {
		summaries = append(summaries, gin.H{"id": e.ID, "title": e.Title, "start": LocalTime(e.Time.Local())})
	}

	resp := gin.H{"reason": reason, "first_events": summaries}
	if !wakeTime.IsZero() {
		resp["wake_time"] = LocalTime(wakeTime.Local())
	}
	ok(c, resp)
}

// notifiers handles GET /notifiers.
func (s *Server) notifiers(c *gin.Context) {
	ok(c, s.Registry.Notifiers.Names())
}

// actions handles GET /actions.
func (s *Server) actions(c *gin.Context) {
	ok(c, s.Registry.Actions.Names())
}

// health handles GET /health.
func (s *Server) health(c *gin.Context) {
	ok(c, gin.H{"status": "ok", "time": time.Now().Format(wireTimeLayout)})
}
