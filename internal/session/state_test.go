package session

import (
	"errors"
	"testing"

	"github.com/fadilmartias/resume-analyzer/internal/dto"
	"github.com/fadilmartias/resume-analyzer/internal/poller"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func polling(t *testing.T) (State, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	s := Reduce(State{Phase: PhaseIdle}, Submitted{Email: "ana@x.com", Name: "Ana"})
	s = Reduce(s, Accepted{TaskID: id})
	require.Equal(t, PhaseWaiting, s.Phase)
	s = Reduce(s, Polled{TaskID: id, Attempt: 1})
	require.Equal(t, PhasePolling, s.Phase)
	return s, id
}

func TestReduceHappyPath(t *testing.T) {
	s, id := polling(t)

	s = Reduce(s, Completed{Outcome: poller.Outcome{
		TaskID:   id,
		Status:   poller.StatusSucceeded,
		Attempts: 2,
		Record:   &dto.AnalysisRecordDTO{Name: "Ana", Email: "ana@x.com", Score: 82},
	}})

	assert.Equal(t, PhaseSucceeded, s.Phase)
	assert.Equal(t, 2, s.Attempts)
	require.NotNil(t, s.Result)
	assert.Equal(t, "82%", s.Result.ScoreLabel())
}

func TestReduceTerminalOutcomes(t *testing.T) {
	boom := errors.New("boom")
	cases := map[poller.Status]Phase{
		poller.StatusTimedOut:  PhaseTimedOut,
		poller.StatusFailed:    PhaseFailed,
		poller.StatusCancelled: PhaseCancelled,
	}
	for status, want := range cases {
		s, id := polling(t)
		s = Reduce(s, Completed{Outcome: poller.Outcome{TaskID: id, Status: status, Err: boom}})
		assert.Equal(t, want, s.Phase, status.String())
		assert.Nil(t, s.Result)
	}
}

func TestReduceIgnoresStaleTask(t *testing.T) {
	s, _ := polling(t)
	stale := uuid.New()

	next := Reduce(s, Polled{TaskID: stale, Attempt: 9})
	assert.Equal(t, s, next)

	next = Reduce(s, Completed{Outcome: poller.Outcome{TaskID: stale, Status: poller.StatusSucceeded, Record: &dto.AnalysisRecordDTO{}}})
	assert.Equal(t, PhasePolling, next.Phase)
	assert.Nil(t, next.Result)
}

func TestReduceIgnoresCompletionAfterCancel(t *testing.T) {
	s, id := polling(t)
	s = Reduce(s, Cancelled{})
	require.Equal(t, PhaseCancelled, s.Phase)

	s = Reduce(s, Completed{Outcome: poller.Outcome{TaskID: id, Status: poller.StatusSucceeded, Record: &dto.AnalysisRecordDTO{Score: 99}}})
	assert.Equal(t, PhaseCancelled, s.Phase)
	assert.Nil(t, s.Result)
}

func TestReduceSubmitReplacesBusyState(t *testing.T) {
	s, oldTask := polling(t)
	next := Reduce(s, Submitted{Email: "bob@x.com", Name: "Bob"})
	assert.Equal(t, PhaseSubmitting, next.Phase)
	assert.Equal(t, "bob@x.com", next.Email)
	assert.Zero(t, next.Attempts)

	after := Reduce(next, Polled{TaskID: oldTask, Attempt: 5})
	assert.Equal(t, next, after)
}

func TestReduceRejectedAndReset(t *testing.T) {
	s := Reduce(State{Phase: PhaseIdle}, Submitted{Email: "ana@x.com"})
	s = Reduce(s, Rejected{Err: errors.New("webhook down")})
	assert.Equal(t, PhaseFailed, s.Phase)
	assert.EqualError(t, s.Err, "webhook down")

	s = Reduce(s, Reset{})
	assert.Equal(t, State{Phase: PhaseIdle}, s)

	s = Reduce(s, Submitted{Email: "ana@x.com"})
	assert.Equal(t, PhaseSubmitting, s.Phase)
}

func TestReduceAttemptsAreMonotonic(t *testing.T) {
	s, id := polling(t)
	s = Reduce(s, Polled{TaskID: id, Attempt: 3})
	s = Reduce(s, Polled{TaskID: id, Attempt: 2})
	assert.Equal(t, 3, s.Attempts)
}
