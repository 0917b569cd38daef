// Package sequence executes a planned construction sequence against the
// host adapter, one step at a time, tracking partial progress and rolling
// back created entities on failure. A session is created per assembly-build
// request and discarded afterwards; it is never persisted.
package sequence

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"vesselcad/pkg/host"
	"vesselcad/pkg/plan"
)

// State is the session lifecycle state.
type State int

const (
	StatePlanned State = iota
	StateRunning
	StateCompleted
	StatePartiallyFailed
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StatePartiallyFailed:
		return "partially-failed"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// Report is the outcome of a session run. On Completed it carries the full
// set of created handles keyed by step id; on failure it names the step, the
// failure, and the rollback outcome.
type Report struct {
	SessionID  string
	State      State
	Handles    map[string]host.Handle
	FailedStep string
	Err        error // HostCallFailedError on a failed run, nil on success
	// RollbackErr is a RollbackIncompleteError when reversal itself failed.
	RollbackErr error
	Unremoved   map[string]host.Handle
}

// Session issues planned steps to the host strictly in order: the host
// offers no transactional isolation, and step N+1 may need a handle produced
// by step N. A session runs once.
type Session struct {
	id    string
	steps []plan.Step
	host  host.Host
	log   *zap.Logger

	state     State
	handles   map[string]host.Handle
	completed []string // completion order, for reverse rollback
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.log = log }
}

// New creates a session over a valid plan. No host calls are made yet.
func New(h host.Host, steps []plan.Step, opts ...Option) *Session {
	s := &Session{
		id:      uuid.NewString(),
		steps:   steps,
		host:    h,
		log:     zap.NewNop(),
		state:   StatePlanned,
		handles: make(map[string]host.Handle),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Run issues every step in planned order. Cancellation is cooperative:
// between steps a cancelled context is treated as if the next step failed,
// triggering the rollback path. Run must be called exactly once.
func (s *Session) Run(ctx context.Context) Report {
	if s.state != StatePlanned {
		return Report{
			SessionID: s.id,
			State:     s.state,
			Err:       ErrSessionConsumed,
		}
	}
	s.state = StateRunning

	for _, step := range s.steps {
		if err := ctx.Err(); err != nil {
			return s.fail(ctx, step.ID, err)
		}

		h, err := s.issue(ctx, step)
		if err != nil {
			return s.fail(ctx, step.ID, err)
		}

		// Record the handle before moving on: the window between the host
		// call and this append is the one acknowledged inconsistency.
		s.handles[step.ID] = h
		s.completed = append(s.completed, step.ID)
	}

	s.state = StateCompleted
	return Report{SessionID: s.id, State: StateCompleted, Handles: s.handles}
}

// issue makes the host call for one step. The reference handle, when the
// operation needs one, is the handle of the step's first dependency.
func (s *Session) issue(ctx context.Context, step plan.Step) (host.Handle, error) {
	var ref host.Handle
	if len(step.DependsOn) > 0 {
		ref = s.handles[step.DependsOn[0]]
	}
	switch step.Op {
	case plan.OpSweep:
		return s.host.CreateSweptSolid(ctx, step.Profile)
	case plan.OpOffset:
		return s.host.CreateOffsetEntity(ctx, step.Profile, ref)
	case plan.OpIntersect:
		return s.host.CreateIntersection(ctx, step.Profile, ref)
	default:
		return "", HostCallFailedError{StepID: step.ID, Err: errUnknownOp(step.Op)}
	}
}

// fail transitions to PartiallyFailed, attempts rollback, and builds the
// failure report.
func (s *Session) fail(ctx context.Context, stepID string, cause error) Report {
	s.state = StatePartiallyFailed
	failure := HostCallFailedError{StepID: stepID, Err: cause}
	s.log.Error("construction step failed",
		zap.String("session", s.id),
		zap.String("step", stepID),
		zap.Error(cause))

	unremoved := s.rollback(ctx)
	report := Report{
		SessionID:  s.id,
		FailedStep: stepID,
		Err:        failure,
		Handles:    s.handles,
	}
	if len(unremoved) > 0 {
		// Stale entities left silently in the drawing would be worse than a
		// loud failure; the caller gets the survivors for manual cleanup.
		report.State = StatePartiallyFailed
		report.Unremoved = unremoved
		remaining := make(map[string]string, len(unremoved))
		for id, h := range unremoved {
			remaining[id] = string(h)
		}
		report.RollbackErr = RollbackIncompleteError{SessionID: s.id, Remaining: remaining}
		s.log.Error("rollback incomplete",
			zap.String("session", s.id),
			zap.Int("orphaned", len(unremoved)))
	} else {
		s.state = StateRolledBack
		report.State = StateRolledBack
	}
	return report
}

// rollback deletes already-created entities in reverse completion order and
// returns those that could not be removed. Deletion proceeds even when the
// run context is already cancelled.
func (s *Session) rollback(ctx context.Context) map[string]host.Handle {
	ctx = context.WithoutCancel(ctx)
	unremoved := make(map[string]host.Handle)
	for i := len(s.completed) - 1; i >= 0; i-- {
		id := s.completed[i]
		h := s.handles[id]
		if err := s.host.DeleteEntity(ctx, h); err != nil {
			s.log.Error("could not remove entity during rollback",
				zap.String("session", s.id),
				zap.String("step", id),
				zap.String("handle", string(h)),
				zap.Error(err))
			unremoved[id] = h
		}
	}
	return unremoved
}
