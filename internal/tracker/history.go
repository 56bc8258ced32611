package tracker

import (
	"context"
	"log/slog"
	"os"

	"github.com/steveyegge/wgtracker/internal/events"
	"github.com/steveyegge/wgtracker/internal/storage"
)

// history records run events. A nil store disables it; write failures are
// logged and otherwise ignored.
type history struct {
	store  storage.Storage
	owned  bool
	logger *slog.Logger
}

func (t *Tracker) openHistory(ctx context.Context, logger *slog.Logger) *history {
	h := &history{store: t.cfg.Store, logger: logger}
	if h.store != nil || !t.cfg.App.History {
		return h
	}

	store, err := storage.NewStorage(ctx, &storage.Config{Path: t.paths.History()})
	if err != nil {
		logger.Warn("run history unavailable", "error", err)
		return h
	}
	h.store = store
	h.owned = true
	return h
}

// record stores event. err is the error returned alongside it by its
// constructor.
func (h *history) record(ctx context.Context, event *events.Event, err error) {
	if h.store == nil {
		return
	}
	if err != nil {
		h.logger.Warn("failed to build run event", "error", err)
		return
	}
	// Outcome events are still written when the run was interrupted.
	if err := h.store.StoreEvent(context.WithoutCancel(ctx), event); err != nil {
		h.logger.Warn("failed to store run event", "type", event.Type, "error", err)
	}
}

func (h *history) close() {
	if h.store == nil || !h.owned {
		return
	}
	if err := h.store.Close(); err != nil {
		h.logger.Warn("failed to close run history", "error", err)
	}
	h.store = nil
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return name
}
