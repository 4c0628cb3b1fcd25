package httpapi

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/registry"
	"github.com/ostepan8/scheduled/internal/scheduler"
	"github.com/ostepan8/scheduled/internal/settings"
	"github.com/ostepan8/scheduled/internal/task"
	"github.com/ostepan8/scheduled/internal/wake"
)

// Server bundles every dependency the route handlers close over. It holds
// no state of its own beyond these references.
type Server struct {
	Model    *model.Index
	Loop     *scheduler.Loop
	Settings *settings.Store
	Wake     *wake.Scheduler
	Registry *registry.Registries
	Logger   *slog.Logger
}

// resolveTask builds a task.ScheduledTask from a category=task event,
// resolving notifier_name/action_name against the registries (spec.md
// §4.F) and leading each notification by lead (zero means no
// notification). Used by the create/update/patch handlers; startup replay
// in cmd/server builds its tasks separately. Per spec.md §7, a notifier_name or action_name that names
// nothing in the registries is rejected rather than silently built into a
// no-op task.
func (s *Server) resolveTask(e *model.Event, lead time.Duration) (*task.ScheduledTask, error) {
	var notifyCb task.Callback
	if e.NotifierName != "" {
		notifier, ok := s.Registry.Notifiers.Get(e.NotifierName)
		if !ok {
			return nil, fmt.Errorf("unknown notifier_name %q", e.NotifierName)
		}
		notifyCb = func() { notifier(e.ID, e.Title) }
	}

	var actionCb task.Callback
	if e.ActionName != "" {
		action, ok := s.Registry.Actions.Get(e.ActionName)
		if !ok {
			return nil, fmt.Errorf("unknown action_name %q", e.ActionName)
		}
		actionCb = action
	}

	var before []time.Duration
	if lead > 0 {
		before = []time.Duration{lead}
	}
	return task.NewBefore(e.ID, e.Title, e.Description, e.Category, e.Time, e.Duration, time.Now(), before, notifyCb, actionCb), nil
}
