package session

import (
	"context"
	"sync"

	"github.com/fadilmartias/resume-analyzer/internal/gateway"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/fadilmartias/resume-analyzer/internal/poller"
	"github.com/google/uuid"
)

// Session drives one submit-then-poll cycle at a time. A new Run supersedes
// the one in flight: the old run is cancelled and has exited before the new
// submission starts.
type Session struct {
	gateway gateway.Gateway
	poller  *poller.Poller

	// OnChange, when set, receives each new state in dispatch order. It runs
	// without any session lock held, so it may call State or Cancel. It must
	// not call Run.
	OnChange func(State)

	mu         sync.Mutex
	state      State
	pending    []State
	delivering bool

	runMu     sync.Mutex
	cancelRun context.CancelFunc
	runDone   chan struct{}
}

func New(gw gateway.Gateway, p *poller.Poller) *Session {
	return &Session{gateway: gw, poller: p, state: State{Phase: PhaseIdle}}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// dispatch applies a to the state and queues the result for OnChange. Whichever
// goroutine finds the queue idle drains it, so nested dispatches from inside
// OnChange are delivered after the current one instead of deadlocking.
func (s *Session) dispatch(a Action) State {
	s.mu.Lock()
	prev := s.state
	s.state = Reduce(s.state, a)
	next := s.state
	if s.OnChange != nil && (next.Phase != prev.Phase || next.Attempts != prev.Attempts) {
		s.pending = append(s.pending, next)
	}
	if s.delivering || len(s.pending) == 0 {
		s.mu.Unlock()
		return next
	}

	s.delivering = true
	for len(s.pending) > 0 {
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()
		for _, st := range batch {
			s.OnChange(st)
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
	return next
}

// begin registers a new run and cancels the previous one, waiting for it to
// exit. The returned context is cancelled by Cancel or by the next Run.
func (s *Session) begin(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.runMu.Lock()
	prevCancel, prevDone := s.cancelRun, s.runDone
	s.cancelRun, s.runDone = cancel, done
	s.runMu.Unlock()

	if prevCancel != nil {
		prevCancel()
		<-prevDone
	}

	return runCtx, func() {
		cancel()
		s.runMu.Lock()
		if s.runDone == done {
			s.cancelRun, s.runDone = nil, nil
		}
		s.runMu.Unlock()
		close(done)
	}
}

// Run submits sub and polls until a terminal phase is reached. A ValidationError
// is returned before any state change or network call; a gateway failure ends
// the run in PhaseFailed without polling.
func (s *Session) Run(ctx context.Context, sub gateway.Submission) (State, error) {
	normalized, err := sub.Validate()
	if err != nil {
		return s.State(), err
	}

	runCtx, end := s.begin(ctx)
	defer end()

	s.dispatch(Submitted{Email: normalized.Email, Name: normalized.Name})

	if _, err := s.gateway.Submit(runCtx, sub); err != nil {
		if runCtx.Err() != nil {
			return s.dispatch(Cancelled{}), runCtx.Err()
		}
		logger.Ctx(ctx).Error().Err(err).Str("email", normalized.Email).Msg("submission failed")
		return s.dispatch(Rejected{Err: err}), err
	}

	taskID := uuid.New()
	if st := s.dispatch(Accepted{TaskID: taskID}); st.Phase != PhaseWaiting || runCtx.Err() != nil {
		return s.dispatch(Cancelled{}), nil
	}

	task := s.poller.Start(runCtx, poller.Target{ID: taskID, Email: normalized.Email, Name: normalized.Name}, func(a poller.Attempt) {
		s.dispatch(Polled{TaskID: a.TaskID, Attempt: a.N})
	})
	out := task.Wait()

	st := s.dispatch(Completed{Outcome: out})
	return st, out.Err
}

// Cancel stops the running submission or poll task and moves the session to
// PhaseCancelled. It does not wait for the task to exit.
func (s *Session) Cancel() {
	s.runMu.Lock()
	cancel := s.cancelRun
	s.runMu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.dispatch(Cancelled{})
}
