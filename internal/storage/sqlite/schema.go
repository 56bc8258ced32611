package sqlite

const schema = `
-- Run history table
CREATE TABLE IF NOT EXISTS run_events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL CHECK(type IN ('run_started', 'task_completed', 'task_failed', 'run_completed', 'run_failed', 'run_skipped', 'history_cleanup')),
    timestamp TEXT NOT NULL,
    run_id TEXT NOT NULL,
    task_kind TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL CHECK(severity IN ('info', 'warning', 'error')),
    message TEXT NOT NULL,
    data TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id);
CREATE INDEX IF NOT EXISTS idx_run_events_type ON run_events(type);
CREATE INDEX IF NOT EXISTS idx_run_events_timestamp ON run_events(timestamp);
`
