package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/client"
	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/gateway"
	"github.com/fadilmartias/resume-analyzer/internal/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend plays the workflow and the backend: a submission becomes
// visible to FetchLatest after visibleAfter polls. Emails in stall never
// become visible.
type fakeBackend struct {
	mu           sync.Mutex
	records      map[string]*dto.AnalysisRecordDTO
	pollsByEmail map[string]int
	stall        map[string]bool
	visibleAfter int32
	polls        atomic.Int32
	submits      atomic.Int32
	submitErr    error
}

func (b *fakeBackend) Submit(_ context.Context, s gateway.Submission) (*gateway.Ack, error) {
	b.submits.Add(1)
	if b.submitErr != nil {
		return nil, b.submitErr
	}
	email := strings.ToLower(strings.TrimSpace(s.Email))
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.records == nil {
		b.records = map[string]*dto.AnalysisRecordDTO{}
	}
	b.records[email] = &dto.AnalysisRecordDTO{
		Name:          s.Name,
		Email:         email,
		Score:         82,
		MissingSkills: []byte(`["Docker"]`),
	}
	return &gateway.Ack{Email: email, StatusCode: 200}, nil
}

func (b *fakeBackend) FetchLatest(_ context.Context, email, _ string) (*dto.AnalysisRecordDTO, error) {
	n := b.polls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pollsByEmail == nil {
		b.pollsByEmail = map[string]int{}
	}
	b.pollsByEmail[email]++
	record := b.records[email]
	if record == nil || b.stall[email] || n < b.visibleAfter {
		return nil, client.ErrNotFoundYet
	}
	return record, nil
}

func (b *fakeBackend) pollsFor(email string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pollsByEmail[email]
}

func submission() gateway.Submission {
	return gateway.Submission{
		Name:            "Ana",
		Email:           "Ana@x.com",
		ResumePath:      "cv.pdf",
		JobDescription:  "Build APIs",
		DesiredJobTitle: "Backend Engineer",
		CompanyName:     "Acme",
	}
}

func newSession(b *fakeBackend, maxAttempts int) *Session {
	return New(b, poller.New(b, poller.Config{Interval: 5 * time.Millisecond, MaxAttempts: maxAttempts}))
}

func TestRunEndToEnd(t *testing.T) {
	b := &fakeBackend{visibleAfter: 2}
	s := newSession(b, 10)

	var mu sync.Mutex
	var phases []Phase
	s.OnChange = func(st State) {
		mu.Lock()
		defer mu.Unlock()
		if len(phases) == 0 || phases[len(phases)-1] != st.Phase {
			phases = append(phases, st.Phase)
		}
	}

	st, err := s.Run(context.Background(), submission())
	require.NoError(t, err)

	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.Equal(t, "ana@x.com", st.Email)
	require.NotNil(t, st.Result)
	assert.Equal(t, "82%", st.Result.ScoreLabel())
	assert.Equal(t, []string{"Docker"}, st.Result.MissingSkills)
	assert.EqualValues(t, 2, b.polls.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseSubmitting, PhaseWaiting, PhasePolling, PhaseSucceeded}, phases)
}

func TestRunValidationFailsBeforeNetwork(t *testing.T) {
	b := &fakeBackend{}
	s := newSession(b, 10)

	sub := submission()
	sub.JobDescription = ""
	_, err := s.Run(context.Background(), sub)

	var vErr *gateway.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Zero(t, b.submits.Load())
	assert.Zero(t, b.polls.Load())
	assert.Equal(t, PhaseIdle, s.State().Phase)
}

func TestRunGatewayFailureSkipsPolling(t *testing.T) {
	b := &fakeBackend{submitErr: &gateway.GatewayError{StatusCode: 502}}
	s := newSession(b, 10)

	st, err := s.Run(context.Background(), submission())
	var gwErr *gateway.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, PhaseFailed, st.Phase)
	assert.Zero(t, b.polls.Load())
}

func TestRunTimesOut(t *testing.T) {
	b := &fakeBackend{visibleAfter: 100}
	s := newSession(b, 3)

	st, err := s.Run(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, PhaseTimedOut, st.Phase)
	assert.Equal(t, 3, st.Attempts)
	assert.Nil(t, st.Result)
}

func TestCancelStopsPolling(t *testing.T) {
	b := &fakeBackend{visibleAfter: 1 << 30}
	s := newSession(b, 1<<20)

	done := make(chan State, 1)
	go func() {
		st, _ := s.Run(context.Background(), submission())
		done <- st
	}()

	require.Eventually(t, func() bool { return b.polls.Load() >= 2 }, time.Second, time.Millisecond)
	s.Cancel()

	var st State
	select {
	case st = <-done:
	case <-time.After(time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Equal(t, PhaseCancelled, st.Phase)

	frozen := b.polls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, b.polls.Load())
}

func TestNewRunSupersedesRunInFlight(t *testing.T) {
	b := &fakeBackend{stall: map[string]bool{"ana@x.com": true}}
	s := newSession(b, 1<<20)

	first := make(chan State, 1)
	go func() {
		st, _ := s.Run(context.Background(), submission())
		first <- st
	}()
	require.Eventually(t, func() bool { return b.pollsFor("ana@x.com") >= 2 }, time.Second, time.Millisecond)

	bob := submission()
	bob.Name, bob.Email = "Bob", "bob@x.com"
	st, err := s.Run(context.Background(), bob)
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.Equal(t, "bob@x.com", st.Email)
	assert.Positive(t, b.pollsFor("bob@x.com"))

	select {
	case old := <-first:
		assert.Equal(t, "ana@x.com", old.Email)
		assert.Equal(t, PhaseCancelled, old.Phase)
	case <-time.After(time.Second):
		t.Fatal("superseded run did not return")
	}

	frozen := b.pollsFor("ana@x.com")
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, b.pollsFor("ana@x.com"))
	assert.EqualValues(t, 2, b.submits.Load())
}

func TestCancelDuringWaitingNeverPolls(t *testing.T) {
	b := &fakeBackend{stall: map[string]bool{"ana@x.com": true}}
	s := newSession(b, 20)
	s.OnChange = func(st State) {
		if st.Phase == PhaseWaiting {
			s.Cancel()
		}
	}

	st, err := s.Run(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, PhaseCancelled, st.Phase)

	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, b.polls.Load())
	assert.Equal(t, PhaseCancelled, s.State().Phase)
}

func TestCancelRacingTaskStartStopsPolling(t *testing.T) {
	b := &fakeBackend{stall: map[string]bool{"ana@x.com": true}}
	s := newSession(b, 20)
	s.OnChange = func(st State) {
		if st.Phase == PhaseWaiting {
			go s.Cancel()
			time.Sleep(20 * time.Millisecond)
		}
	}

	st, err := s.Run(context.Background(), submission())
	require.NoError(t, err)
	assert.Equal(t, PhaseCancelled, st.Phase)

	frozen := b.polls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, frozen, b.polls.Load())
	assert.Less(t, frozen, int32(20))
}

func TestOnChangeMayCancelWhilePolling(t *testing.T) {
	b := &fakeBackend{stall: map[string]bool{"ana@x.com": true}}
	s := newSession(b, 1<<20)
	s.OnChange = func(st State) {
		if st.Phase == PhasePolling && st.Attempts >= 2 {
			s.Cancel()
		}
	}

	done := make(chan State, 1)
	go func() {
		st, _ := s.Run(context.Background(), submission())
		done <- st
	}()

	select {
	case st := <-done:
		assert.Equal(t, PhaseCancelled, st.Phase)
	case <-time.After(time.Second):
		t.Fatal("cancel from OnChange deadlocked")
	}
}
