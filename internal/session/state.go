package session

import (
	"github.com/fadilmartias/resume-analyzer/internal/poller"
	"github.com/fadilmartias/resume-analyzer/internal/result"
	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseWaiting    Phase = "waiting"
	PhasePolling    Phase = "polling"
	PhaseSucceeded  Phase = "succeeded"
	PhaseTimedOut   Phase = "timed_out"
	PhaseFailed     Phase = "failed"
	PhaseCancelled  Phase = "cancelled"
)

// Terminal reports whether no further progress happens without a new submit.
func (p Phase) Terminal() bool {
	switch p {
	case PhaseSucceeded, PhaseTimedOut, PhaseFailed, PhaseCancelled:
		return true
	}
	return false
}

// Busy reports whether a submission is in flight.
func (p Phase) Busy() bool {
	switch p {
	case PhaseSubmitting, PhaseWaiting, PhasePolling:
		return true
	}
	return false
}

type State struct {
	Phase    Phase
	TaskID   uuid.UUID
	Email    string
	Name     string
	Attempts int
	Result   *result.Results
	Err      error
}

type Action interface{ isAction() }

// Submitted starts a new submission. Email is expected to be normalized.
type Submitted struct {
	Email string
	Name  string
}

// Accepted means the gateway acknowledged the submission; TaskID is the
// polling task that will follow.
type Accepted struct{ TaskID uuid.UUID }

// Rejected means the submission never reached the workflow.
type Rejected struct{ Err error }

type Polled struct {
	TaskID  uuid.UUID
	Attempt int
}

type Completed struct{ Outcome poller.Outcome }

type Cancelled struct{}

type Reset struct{}

func (Submitted) isAction() {}
func (Accepted) isAction()  {}
func (Rejected) isAction()  {}
func (Polled) isAction()    {}
func (Completed) isAction() {}
func (Cancelled) isAction() {}
func (Reset) isAction()     {}

// Reduce is the only way State changes. Actions that do not apply to the
// current phase, or that carry another task's id, leave the state untouched.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Submitted:
		// A new submission replaces whatever was in flight; the old task's
		// actions no longer match TaskID and are dropped.
		return State{Phase: PhaseSubmitting, Email: a.Email, Name: a.Name}

	case Rejected:
		if s.Phase != PhaseSubmitting {
			return s
		}
		s.Phase = PhaseFailed
		s.Err = a.Err
		return s

	case Accepted:
		if s.Phase != PhaseSubmitting {
			return s
		}
		s.Phase = PhaseWaiting
		s.TaskID = a.TaskID
		return s

	case Polled:
		if a.TaskID != s.TaskID || (s.Phase != PhaseWaiting && s.Phase != PhasePolling) {
			return s
		}
		s.Phase = PhasePolling
		if a.Attempt > s.Attempts {
			s.Attempts = a.Attempt
		}
		return s

	case Completed:
		out := a.Outcome
		if out.TaskID != s.TaskID || (s.Phase != PhaseWaiting && s.Phase != PhasePolling) {
			return s
		}
		s.Attempts = out.Attempts
		switch out.Status {
		case poller.StatusSucceeded:
			s.Phase = PhaseSucceeded
			if out.Record != nil {
				r := result.Normalize(*out.Record)
				s.Result = &r
			}
		case poller.StatusTimedOut:
			s.Phase = PhaseTimedOut
		case poller.StatusFailed:
			s.Phase = PhaseFailed
			s.Err = out.Err
		case poller.StatusCancelled:
			s.Phase = PhaseCancelled
		}
		return s

	case Cancelled:
		if !s.Phase.Busy() {
			return s
		}
		s.Phase = PhaseCancelled
		return s

	case Reset:
		return State{Phase: PhaseIdle}
	}
	return s
}
