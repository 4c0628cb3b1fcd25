package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ostepan8/scheduled/internal/httpapi/middleware"
	"github.com/ostepan8/scheduled/internal/metrics"
)

// NewRouter assembles the gin engine implementing spec.md §6's HTTP surface
// (expanded concretely per SPEC_FULL.md), grounded in the teacher/pack's
// gin router shape (ErlanBelekov-dist-job-scheduler's internal/http/router.go).
func NewRouter(s *Server, keys middleware.Keys, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(metricsMiddleware())
	r.Use(limiter.Limit())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/", middleware.RequireAPIKey(keys))

	events := api.Group("/events")
	events.POST("", s.createEvent)
	events.GET("", s.listEvents)
	events.GET("/next", s.next)
	events.GET("/range", s.rangeExpanded)
	events.GET("/conflicts", s.conflicts)
	events.GET("/validate", s.validate)
	events.GET("/:id", s.getEvent)
	events.PUT("/:id", s.replaceEvent)
	events.PATCH("/:id", s.patchEvent)
	events.DELETE("/:id", middleware.RequireAdminKey(keys), s.deleteEvent)
	events.POST("/:id/restore", s.restoreEvent)

	freeSlots := api.Group("/free-slots")
	freeSlots.GET("/next", s.nextFree)
	freeSlots.GET("/:date", s.freeSlots)

	api.GET("/stats/events/:from/:to", s.stats)
	api.GET("/recurring/preview", s.recurringPreview)

	api.GET("/wake/config", s.getWakeConfig)
	api.PUT("/wake/config", middleware.RequireAdminKey(keys), s.putWakeConfig)
	api.POST("/wake/preview/:date", s.previewWake)

	api.GET("/notifiers", s.notifiers)
	api.GET("/actions", s.actions)

	return r
}

// metricsMiddleware records every request's outcome into
// internal/metrics.HTTPRequestsTotal.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), statusBucket(c.Writer.Status())).Inc()
	}
}

func statusBucket(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
