// Package engine is the persistent task pipeline behind the tracker.
//
// A State holds an ordered queue of Tasks plus the bookkeeping that keeps
// re-execution safe: ledgers of already-handled comments and decision issues,
// poll watermarks, and two lookup caches that are never persisted. Each call
// to Step runs exactly one task. Follow-on work a task stages is merged ahead
// of older siblings on the next call, so multi-step workflows run depth-first
// and every intermediate point is a checkpoint the driver can save.
package engine

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// State is the tracker's durable task pipeline. It is not safe for
// concurrent use.
type State struct {
	pending []Task
	staged  []Task

	handledComments       map[string]bool
	handledDecisionIssues map[int]bool

	// Transient caches. knownLabels is nil and decisionsRepoID is "" until
	// their loader tasks run; neither survives a snapshot round trip.
	knownLabels     map[string]string
	decisionsRepoID string

	wgWatermark        time.Time
	decisionsWatermark time.Time
}

// New returns a fresh State whose watermarks start at start.
func New(start time.Time) *State {
	return &State{
		handledComments:       make(map[string]bool),
		handledDecisionIssues: make(map[int]bool),
		wgWatermark:           start,
		decisionsWatermark:    start,
	}
}

// Step runs the next task. Staged follow-on work is first merged in front of
// the pending queue. It returns the task it ran, or nil if there was nothing
// to do.
//
// If the task fails it is put back at the front of the queue and the error is
// returned; anything the task staged before failing is kept. Every task is
// safe to re-execute from scratch.
func (s *State) Step(ctx context.Context, env *Env) (Task, error) {
	if len(s.staged) > 0 {
		s.pending = append(s.staged, s.pending...)
		s.staged = nil
	}
	if len(s.pending) == 0 {
		return nil, nil
	}

	task := s.pending[0]
	s.pending = s.pending[1:]

	if err := s.execute(ctx, env, task); err != nil {
		s.pending = append([]Task{task}, s.pending...)
		return task, fmt.Errorf("%s: %w", task.Kind(), err)
	}
	return task, nil
}

// IsFinished reports whether no work is pending or staged.
func (s *State) IsFinished() bool {
	return len(s.pending) == 0 && len(s.staged) == 0
}

// ScheduleUpdates queues a poll of each repository from its watermark. A poll
// that is already queued is not queued twice.
func (s *State) ScheduleUpdates() {
	if !s.hasQueued(KindPollWGIssues) {
		s.pending = append(s.pending, PollWGIssues{Since: s.wgWatermark})
	}
	if !s.hasQueued(KindPollDecisionIssues) {
		s.pending = append(s.pending, PollDecisionIssues{Since: s.decisionsWatermark})
	}
}

func (s *State) hasQueued(kind TaskKind) bool {
	match := func(t Task) bool { return t.Kind() == kind }
	return slices.ContainsFunc(s.pending, match) || slices.ContainsFunc(s.staged, match)
}

func (s *State) stage(tasks ...Task) {
	s.staged = append(s.staged, tasks...)
}

// Pending returns a copy of the pending queue, front first.
func (s *State) Pending() []Task {
	return slices.Clone(s.pending)
}

// Staged returns a copy of the tasks staged by the last step.
func (s *State) Staged() []Task {
	return slices.Clone(s.staged)
}

// WGWatermark is the update time the next working group poll starts from.
func (s *State) WGWatermark() time.Time { return s.wgWatermark }

// DecisionsWatermark is the update time the next decisions poll starts from.
func (s *State) DecisionsWatermark() time.Time { return s.decisionsWatermark }

// HandledComments returns the number of resolution comments already filed.
func (s *State) HandledComments() int { return len(s.handledComments) }

// HandledDecisionIssues returns the number of decision issues already sent
// to the bug tracker.
func (s *State) HandledDecisionIssues() int { return len(s.handledDecisionIssues) }

func advance(watermark *time.Time, seen time.Time) {
	if seen.After(*watermark) {
		*watermark = seen
	}
}
