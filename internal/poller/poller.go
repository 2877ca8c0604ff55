package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/client"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/google/uuid"
)

const (
	DefaultInterval    = 2 * time.Second
	DefaultMaxAttempts = 30
)

// Fetcher reads the latest analysis. It must return client.ErrNotFoundYet
// while no result exists.
type Fetcher interface {
	FetchLatest(ctx context.Context, email, name string) (*dto.AnalysisRecordDTO, error)
}

type Status int

const (
	StatusRunning Status = iota
	StatusSucceeded
	StatusTimedOut
	StatusFailed
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusTimedOut:
		return "timed_out"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Outcome is the terminal result of a task. Record is set only on success,
// Err only on failure.
type Outcome struct {
	TaskID   uuid.UUID
	Status   Status
	Record   *dto.AnalysisRecordDTO
	Err      error
	Attempts int
}

// Target identifies what a task polls for. A zero ID is replaced with a fresh
// one.
type Target struct {
	ID    uuid.UUID
	Email string
	Name  string
}

// Attempt is reported to the observer after every completed, non-stale poll.
type Attempt struct {
	TaskID uuid.UUID
	N      int
	Err    error
}

type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// Poller runs at most one task at a time. Starting a task cancels the previous
// one and waits for it to exit.
type Poller struct {
	fetcher Fetcher
	cfg     Config

	mu      sync.Mutex
	current *Task
}

func New(fetcher Fetcher, cfg Config) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Poller{fetcher: fetcher, cfg: cfg}
}

// Start launches a task for target. observer may be nil.
func (p *Poller) Start(ctx context.Context, target Target, observer func(Attempt)) *Task {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.Cancel()
	}

	if target.ID == uuid.Nil {
		target.ID = uuid.New()
	}
	taskCtx, cancel := context.WithCancel(ctx)
	t := &Task{
		target:   target,
		fetcher:  p.fetcher,
		cfg:      p.cfg,
		observer: observer,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	p.current = t
	go t.run(taskCtx)
	return t
}

// Cancel stops the current task, if any.
func (p *Poller) Cancel() {
	p.mu.Lock()
	t := p.current
	p.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// Task is one polling loop. It owns a single timer and never has more than
// one request in flight.
type Task struct {
	target   Target
	fetcher  Fetcher
	cfg      Config
	observer func(Attempt)

	cancel   context.CancelFunc
	done     chan struct{}
	attempts atomic.Int32
	outcome  Outcome
}

func (t *Task) ID() uuid.UUID { return t.target.ID }

// Attempts is the number of polls issued so far.
func (t *Task) Attempts() int { return int(t.attempts.Load()) }

func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the timer, aborts any in-flight request and waits for the loop
// to exit. Safe to call more than once.
func (t *Task) Cancel() {
	t.cancel()
	<-t.done
}

// Wait blocks until the task finishes and returns its outcome.
func (t *Task) Wait() Outcome {
	<-t.done
	return t.outcome
}

func (t *Task) run(ctx context.Context) {
	defer close(t.done)
	defer t.cancel()

	log := logger.Ctx(ctx).With().Str("task_id", t.target.ID.String()).Str("email", t.target.Email).Logger()

	timer := time.NewTimer(t.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			t.finish(StatusCancelled, nil, nil)
			return
		case <-timer.C:
		}

		n := int(t.attempts.Add(1))
		record, err := t.fetcher.FetchLatest(ctx, t.target.Email, t.target.Name)

		// Anything that lands after cancellation is stale.
		if ctx.Err() != nil {
			t.finish(StatusCancelled, nil, nil)
			return
		}

		if t.observer != nil {
			t.observer(Attempt{TaskID: t.target.ID, N: n, Err: err})
		}

		switch {
		case err == nil && record != nil:
			log.Debug().Int("attempt", n).Msg("analysis ready")
			t.finish(StatusSucceeded, record, nil)
			return
		case err == nil || errors.Is(err, client.ErrNotFoundYet):
			if n >= t.cfg.MaxAttempts {
				log.Warn().Int("attempts", n).Msg("polling timed out")
				t.finish(StatusTimedOut, nil, nil)
				return
			}
			timer.Reset(t.cfg.Interval)
		default:
			log.Error().Err(err).Int("attempt", n).Msg("polling failed")
			t.finish(StatusFailed, nil, err)
			return
		}
	}
}

func (t *Task) finish(status Status, record *dto.AnalysisRecordDTO, err error) {
	t.outcome = Outcome{
		TaskID:   t.target.ID,
		Status:   status,
		Record:   record,
		Err:      err,
		Attempts: t.Attempts(),
	}
}
