package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ostepan8/scheduled/internal/apperr"
	"github.com/ostepan8/scheduled/internal/recurrence"
)

// recurringPreview handles GET /recurring/preview?frequency=&interval=&start=
// &weekdays=&max_count=&end=&after=&n=&due_on=. Either n (nextN) or due_on
// (isDueOn) selects the query; n is the default.
func (s *Server) recurringPreview(c *gin.Context) {
	freq := recurrence.Frequency(c.Query("frequency"))
	start, err := time.ParseInLocation(wireTimeLayout, c.Query("start"), time.Local)
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidInput, "start: "+err.Error()))
		return
	}

	interval := 1
	if v := c.Query("interval"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			interval = n
		}
	}
	opts := recurrence.Options{Interval: interval}
	if v := c.Query("max_count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			opts.MaxCount = n
		}
	}
	if v := c.Query("end"); v != "" {
		end, err := time.ParseInLocation(wireTimeLayout, v, time.Local)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, "end: "+err.Error()))
			return
		}
		opts.End = end
	}
	for _, v := range c.QueryArray("weekdays") {
		n, err := strconv.Atoi(v)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, "weekdays must be integers 0-6"))
			return
		}
		opts.Weekdays = append(opts.Weekdays, time.Weekday(n))
	}

	pattern, err := recurrence.New(freq, start, opts)
	if err != nil {
		fail(c, apperr.New(apperr.KindInvalidPattern, err.Error()))
		return
	}

	if dueOnStr := c.Query("due_on"); dueOnStr != "" {
		d, err := time.ParseInLocation(wireTimeLayout, dueOnStr, time.Local)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, "due_on: "+err.Error()))
			return
		}
		ok(c, gin.H{"due_on": d.Format(wireTimeLayout), "is_due": pattern.IsDueOn(d)})
		return
	}

	after := start.Add(-time.Second)
	if v := c.Query("after"); v != "" {
		parsed, err := time.ParseInLocation(wireTimeLayout, v, time.Local)
		if err != nil {
			fail(c, apperr.New(apperr.KindInvalidInput, "after: "+err.Error()))
			return
		}
		after = parsed
	}
	n := 10
	if v := c.Query("n"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			n = parsed
		}
	}

	occurrences := pattern.NextOccurrences(after, n)
	wire := make([]string, 0, len(occurrences))
	for _, t := range occurrences {
		wire = append(wire, t.Format(wireTimeLayout))
	}
	ok(c, gin.H{"occurrences": wire})
}
