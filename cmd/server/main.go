// Command server runs the personal scheduling service: the HTTP surface,
// the event loop, and the wake scheduler, all backed by a single embedded
// sqlite database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ostepan8/scheduled/internal/config"
	"github.com/ostepan8/scheduled/internal/httpapi"
	"github.com/ostepan8/scheduled/internal/httpapi/middleware"
	"github.com/ostepan8/scheduled/internal/metrics"
	"github.com/ostepan8/scheduled/internal/model"
	"github.com/ostepan8/scheduled/internal/observability"
	"github.com/ostepan8/scheduled/internal/registry"
	"github.com/ostepan8/scheduled/internal/scheduler"
	"github.com/ostepan8/scheduled/internal/settings"
	"github.com/ostepan8/scheduled/internal/store/sqlite"
	"github.com/ostepan8/scheduled/internal/task"
	"github.com/ostepan8/scheduled/internal/wake"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	lp, logger, err := observability.InitLogger(ctx, "scheduled", cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer shutdownWithTimeout(lp.Shutdown, 5*time.Second)
	slog.SetDefault(logger)

	tp, err := observability.InitTracerProvider(ctx, "scheduled", cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("init tracer provider: %w", err)
	}
	defer shutdownWithTimeout(tp.Shutdown, 5*time.Second)

	mp, err := observability.InitMeterProvider(ctx, "scheduled", cfg.OTelEnabled)
	if err != nil {
		return fmt.Errorf("init meter provider: %w", err)
	}
	defer shutdownWithTimeout(mp.Shutdown, 5*time.Second)

	metrics.Register()

	slog.InfoContext(ctx, "starting scheduled service", "db_path", cfg.DBPath, "http_port", cfg.HTTPPort)

	db, err := sqlite.Open(sqlite.Config{Path: cfg.DBPath})
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	idx := model.New(db.Events)

	st, err := settings.New(db.Settings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	regs := registry.New()
	regs.RegisterBuiltins(logger)

	loop := scheduler.New(
		scheduler.WithEventSource(idx),
		scheduler.WithStaleDropHook(func(t *task.ScheduledTask) {
			metrics.StaleTasksDroppedTotal.WithLabelValues(t.Category).Inc()
			slog.InfoContext(ctx, "dropped stale task", "id", t.ID, "category", t.Category)
		}),
		scheduler.WithNotifyHook(func(t *task.ScheduledTask) {
			metrics.NotificationsSentTotal.WithLabelValues(t.Category).Inc()
		}),
		scheduler.WithExecuteHook(func(t *task.ScheduledTask) {
			metrics.TasksExecutedTotal.WithLabelValues(t.Category).Inc()
		}),
		scheduler.WithPanicHandler(func(t *task.ScheduledTask, stage string, r any) {
			slog.ErrorContext(ctx, "task callback panicked", "id", t.ID, "stage", stage, "recovered", r)
		}),
	)
	loop.Start()
	defer loop.Stop()

	if err := replayPersistedTasks(ctx, db, regs, loop); err != nil {
		slog.ErrorContext(ctx, "replay failed", "error", err)
	}

	wakeSched := wake.New(idx, loop, st, wake.NewHTTPPoster(), scheduler.RealClock{}, cfg.Location()).WithLogger(logger)
	wakeSched.ScheduleToday()
	wakeSched.ScheduleDailyMaintenance()

	srv := &httpapi.Server{
		Model:    idx,
		Loop:     loop,
		Settings: st,
		Wake:     wakeSched,
		Registry: regs,
		Logger:   logger,
	}
	keys := middleware.NewKeys(cfg.APIKey, cfg.AdminKey)
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	router := httpapi.NewRouter(srv, keys, limiter)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("serve http: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.InfoContext(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.WarnContext(shutdownCtx, "http shutdown error", "error", err)
		}
		return nil
	case err := <-errCh:
		return err
	}
}

// replayPersistedTasks reconstructs scheduled tasks for every persisted
// category=task event whose time is still in the future, per spec.md
// §4.F: the host, not the store, owns re-enqueueing at startup.
func replayPersistedTasks(ctx context.Context, db *sqlite.DB, regs *registry.Registries, loop *scheduler.Loop) error {
	events, err := db.Events.List()
	if err != nil {
		return fmt.Errorf("list persisted events: %w", err)
	}

	now := time.Now()
	replayed := 0
	for _, e := range events {
		if e.Category != "task" || !e.Time.After(now) {
			continue
		}

		notifier, hasNotifier := regs.Notifiers.Get(e.NotifierName)
		action, _ := regs.Actions.Get(e.ActionName)

		var notifyCb task.Callback
		if hasNotifier {
			notifyCb = func() { notifier(e.ID, e.Title) }
		}
		var actionCb task.Callback
		if action != nil {
			actionCb = action
		}

		var before []time.Duration
		if gap := e.Time.Sub(now); gap > 10*time.Minute {
			before = []time.Duration{10 * time.Minute}
		}

		t := task.NewBefore(e.ID, e.Title, e.Description, e.Category, e.Time, e.Duration, now, before, notifyCb, actionCb)
		loop.AddTask(t)
		replayed++
	}

	slog.InfoContext(ctx, "replayed persisted tasks", "count", replayed)
	return nil
}

func shutdownWithTimeout(shutdown func(context.Context) error, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
