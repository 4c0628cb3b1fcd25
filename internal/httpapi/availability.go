package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostepan8/scheduled/internal/apperr"
)

const (
	defaultStartHour  = 9
	defaultEndHour    = 17
	defaultMinMinutes = 15
)

func queryHourRange(c *gin.Context) (startHour, endHour int) {
	startHour, endHour = defaultStartHour, defaultEndHour
	if v := c.Query("start_hour"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			startHour = n
		}
	}
	if v := c.Query("end_hour"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			endHour = n
		}
	}
	return
}

// freeSlots handles GET /free-slots/:date?start_hour=&end_hour=&min_minutes=.
func (s *Server) freeSlots(c *gin.Context) {
	day, err := parseDate(c.Param("date"))
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	startHour, endHour := queryHourRange(c)
	minMinutes := defaultMinMinutes
	if v := c.Query("min_minutes"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			minMinutes = n
		}
	}

	slots := s.Model.FreeSlots(day, startHour, endHour, time.Duration(minMinutes)*time.Minute)
	out := make([]TimeSlotWire, 0, len(slots))
	for _, sl := range slots {
		out = append(out, timeSlotFromModel(sl))
	}
	ok(c, out)
}

// nextFree handles GET /free-slots/next?duration=&after=&start_hour=&end_hour=.
func (s *Server) nextFree(c *gin.Context) {
	minutes, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, "duration must be an integer number of minutes"))
		return
	}
	after := time.Now()
	if v := c.Query("after"); v != "" {
		parsed, err := time.ParseInLocation(wireTimeLayout, v, time.Local)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
			return
		}
		after = parsed
	}
	startHour, endHour := queryHourRange(c)

	slot, found := s.Model.NextFree(time.Duration(minutes)*time.Minute, after, startHour, endHour)
	if !found {
		fail(c, apperr.New(apperr.KindNotFound, "no free slot found within the search horizon"))
		return
	}
	ok(c, timeSlotFromModel(slot))
}

// stats handles GET /stats/events/:from/:to.
func (s *Server) stats(c *gin.Context) {
	from, err := parseDate(c.Param("from"))
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	to, err := parseDate(c.Param("to"))
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, err.Error()))
		return
	}
	ok(c, s.Model.Stats(from, to))
}
