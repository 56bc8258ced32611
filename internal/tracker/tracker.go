// Package tracker drives one wg-tracker run: it takes the state directory
// lock, restores the engine snapshot, queues fresh polls and steps the
// engine until the queue drains or a task fails, saving after every step.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/steveyegge/wgtracker/internal/bugzilla"
	"github.com/steveyegge/wgtracker/internal/config"
	"github.com/steveyegge/wgtracker/internal/engine"
	"github.com/steveyegge/wgtracker/internal/errs"
	"github.com/steveyegge/wgtracker/internal/events"
	"github.com/steveyegge/wgtracker/internal/github"
	"github.com/steveyegge/wgtracker/internal/storage"
)

// Config wires a Tracker to its collaborators.
type Config struct {
	// App is the validated main configuration (required).
	App *config.Config
	// Remote is the issue tracker API (required).
	Remote engine.Remote
	// Bugs files bug tracker tickets. Without it FileBugWithDetails fails.
	Bugs engine.BugTracker
	// Policy overrides loading the repo policy from App.
	Policy *config.Policy
	// HTTPClient fetches the repo policy when it is loaded from a URL.
	HTTPClient *http.Client
	// Store overrides opening the history database from the state
	// directory. A provided store is not closed by the tracker.
	Store storage.Storage
	Logger *slog.Logger
}

// FromApp builds a Config with the GitHub and Bugzilla clients described by
// app. The Bugzilla client is only set when an API key is configured.
func FromApp(app *config.Config, logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := &Config{
		App: app,
		Remote: github.New(app.GitHubToken,
			github.WithEndpoint(app.GitHub.Endpoint),
			github.WithRateLimit(app.GitHub.RequestsPerSecond),
			github.WithLogger(logger),
		),
		Logger: logger,
	}
	if app.Bugzilla.APIKey != "" {
		cfg.Bugs = bugzilla.New(app.Bugzilla.URL, app.Bugzilla.APIKey, nil, logger)
	}
	return cfg
}

// Tracker runs the engine against one state directory.
type Tracker struct {
	cfg    *Config
	paths  storage.Paths
	logger *slog.Logger
}

// Summary reports what a run did.
type Summary struct {
	RunID string
	// Skipped is set when another instance held the lock; Holder describes it.
	Skipped   bool
	Holder    string
	TasksRun  int
	Remaining int
	Duration  time.Duration
}

// New validates cfg and returns a Tracker.
func New(cfg *Config) (*Tracker, error) {
	if cfg == nil || cfg.App == nil {
		return nil, errs.Config("invalid tracker config", fmt.Errorf("app config is required"))
	}
	if cfg.Remote == nil {
		return nil, errs.Config("invalid tracker config", fmt.Errorf("remote client is required"))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		cfg:    cfg,
		paths:  storage.NewPaths(cfg.App.StateDirectory),
		logger: logger,
	}, nil
}

// Run performs one tracker run. If another instance holds the lock it
// returns a skipped Summary and no error. On a task failure the state is
// saved with the failed task at the front of the queue before the error is
// returned, so the next run retries it.
func (t *Tracker) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: events.NewRunID()}
	logger := t.logger.With("run_id", summary.RunID)

	if err := t.paths.Ensure(); err != nil {
		return summary, errs.Config("invalid state directory", err)
	}

	lock, err := storage.AcquireLock(t.paths.Lock(), summary.RunID)
	if errors.Is(err, storage.ErrLocked) {
		summary.Skipped = true
		if holder, herr := storage.ReadLockHolder(t.paths.Lock()); herr == nil && holder != nil {
			summary.Holder = holder.String()
		}
		logger.Info("another wg-tracker instance is running, exiting", "holder", summary.Holder)

		hist := t.openHistory(ctx, logger)
		hist.record(ctx, events.NewRunSkippedEvent(summary.RunID, "another instance holds the lock", summary.Holder), nil)
		hist.close()
		return summary, nil
	}
	if err != nil {
		return summary, errs.Config("could not lock state directory", err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release lock", "error", err)
		}
	}()

	hist := t.openHistory(ctx, logger)
	defer hist.close()

	fail := func(err error) (*Summary, error) {
		summary.Duration = time.Since(started)
		event, eventErr := events.NewRunFailedEvent(summary.RunID, err.Error(), events.RunFinishedData{
			TasksRun:   summary.TasksRun,
			DurationMs: summary.Duration.Milliseconds(),
			Remaining:  summary.Remaining,
			Error:      err.Error(),
			ErrorKind:  string(errs.KindOf(err)),
		})
		hist.record(ctx, event, eventErr)
		return summary, err
	}

	policy, err := t.policy(ctx)
	if err != nil {
		return fail(err)
	}

	state, err := engine.LoadOrNew(t.paths.Snapshot(), t.cfg.App.StartTime())
	if err != nil {
		return fail(err)
	}
	state.ScheduleUpdates()

	startedEvent, err := events.NewRunStartedEvent(summary.RunID, "run started", events.RunStartedData{
		Hostname:           hostname(),
		PID:                os.Getpid(),
		PendingTasks:       len(state.Pending()),
		WGWatermark:        state.WGWatermark(),
		DecisionsWatermark: state.DecisionsWatermark(),
	})
	hist.record(ctx, startedEvent, err)
	logger.Debug("state restored",
		"pending", len(state.Pending()),
		"wg_watermark", state.WGWatermark(),
		"decisions_watermark", state.DecisionsWatermark())

	env := &engine.Env{
		Remote:        t.cfg.Remote,
		Bugs:          t.cfg.Bugs,
		WGRepo:        t.cfg.App.WGRepoRef(),
		DecisionsRepo: t.cfg.App.DecisionsRepoRef(),
		Policy:        policy,
	}

	for {
		if err := ctx.Err(); err != nil {
			summary.Remaining = len(state.Pending()) + len(state.Staged())
			return fail(fmt.Errorf("run interrupted: %w", err))
		}

		stepStart := time.Now()
		task, stepErr := state.Step(ctx, env)
		saveErr := state.Save(t.paths.Snapshot(), t.paths.SnapshotTemp())
		summary.Remaining = len(state.Pending()) + len(state.Staged())

		if task != nil {
			summary.TasksRun++
			t.recordTask(ctx, hist, logger, summary.RunID, task, len(state.Staged()), time.Since(stepStart), stepErr)
		}
		if saveErr != nil {
			if stepErr != nil {
				logger.Error("task failed", "error", stepErr)
			}
			return fail(fmt.Errorf("could not save state: %w", saveErr))
		}
		if stepErr != nil {
			return fail(stepErr)
		}
		if state.IsFinished() {
			break
		}
	}

	summary.Duration = time.Since(started)
	completedEvent, err := events.NewRunCompletedEvent(summary.RunID, "run completed", events.RunFinishedData{
		TasksRun:   summary.TasksRun,
		DurationMs: summary.Duration.Milliseconds(),
	})
	hist.record(ctx, completedEvent, err)
	logger.Info("run completed", "tasks", summary.TasksRun, "duration", summary.Duration.Round(time.Millisecond))

	t.pruneHistory(ctx, hist, logger, summary.RunID)
	return summary, nil
}

func (t *Tracker) policy(ctx context.Context) (*config.Policy, error) {
	if t.cfg.Policy != nil {
		return t.cfg.Policy, nil
	}
	return config.LoadPolicy(ctx, t.cfg.HTTPClient, t.cfg.App)
}

func (t *Tracker) recordTask(ctx context.Context, hist *history, logger *slog.Logger, runID string, task engine.Task, staged int, elapsed time.Duration, stepErr error) {
	kind := string(task.Kind())
	data := events.TaskData{
		Description: engine.Describe(task),
		Staged:      staged,
		DurationMs:  elapsed.Milliseconds(),
	}

	if stepErr != nil {
		data.Error = stepErr.Error()
		data.ErrorKind = string(errs.KindOf(stepErr))
		logger.Error("task failed", "task", kind, "error", stepErr)
		event, err := events.NewTaskFailedEvent(runID, kind, data.Description, data)
		hist.record(ctx, event, err)
		return
	}

	logger.Info("task completed", "task", kind, "staged", staged)
	logger.Debug("task detail", "task", kind, "description", data.Description, "duration", elapsed)
	event, err := events.NewTaskCompletedEvent(runID, kind, data.Description, data)
	hist.record(ctx, event, err)
}

func (t *Tracker) pruneHistory(ctx context.Context, hist *history, logger *slog.Logger, runID string) {
	retention := t.cfg.App.HistoryRetention
	if hist.store == nil || !retention.Enabled() {
		return
	}
	deleted, err := hist.store.CleanupEventsOlderThan(ctx, time.Now().Add(-retention.Retention()), retention.CleanupBatchSize)
	if err != nil {
		logger.Warn("history cleanup failed", "error", err)
		return
	}
	if deleted == 0 {
		return
	}
	logger.Debug("pruned run history", "deleted", deleted)
	event, err := events.NewHistoryCleanupEvent(runID, events.HistoryCleanupData{
		Deleted:       deleted,
		RetentionDays: retention.RetentionDays,
	})
	hist.record(ctx, event, err)
}
