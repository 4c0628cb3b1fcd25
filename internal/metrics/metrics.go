// Package metrics holds the Prometheus counters exposed by the scheduler
// service, grounded in the retrieval pack's job-scheduler metrics shape
// (same Namespace/Name/Help layout, scaled down to this service's event
// loop and wake scheduler).
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// TasksExecutedTotal counts every ScheduledTask execution fired by the
	// event loop, by category.
	TasksExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "tasks_executed_total",
		Help:      "Total scheduled tasks executed by the event loop.",
	}, []string{"category"})

	// NotificationsSentTotal counts every notification fired ahead of a
	// task's execution.
	NotificationsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "notifications_sent_total",
		Help:      "Total task notifications fired.",
	}, []string{"category"})

	// StaleTasksDroppedTotal counts queue entries the event loop silently
	// discarded because the model no longer agrees with their Time (or no
	// longer holds the event at all).
	StaleTasksDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "stale_tasks_dropped_total",
		Help:      "Total queued tasks dropped for staleness.",
	}, []string{"category"})

	// WakeJobsScheduledTotal counts every wake task the wake scheduler has
	// enqueued, by the reason computeWakeTime chose.
	WakeJobsScheduledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "wake_jobs_scheduled_total",
		Help:      "Total wake tasks scheduled, by reason.",
	}, []string{"reason"})

	// WakePostFailuresTotal counts failed HTTP deliveries of the wake
	// payload to the configured server URL.
	WakePostFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "wake_post_failures_total",
		Help:      "Total failed wake webhook deliveries.",
	})

	// HTTPRequestsTotal counts inbound API requests by route/method/status.
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scheduler",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

// Register installs every collector with the default Prometheus registry.
// Call once during process bring-up, before the HTTP server starts.
func Register() {
	prometheus.MustRegister(
		TasksExecutedTotal,
		NotificationsSentTotal,
		StaleTasksDroppedTotal,
		WakeJobsScheduledTotal,
		WakePostFailuresTotal,
		HTTPRequestsTotal,
	)
}
