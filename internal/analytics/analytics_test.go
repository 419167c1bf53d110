package analytics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairway/internal/types"
)

// collectingSink gathers events behind a mutex for inspection.
type collectingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectingSink) Record(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectingSink) all() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func TestRecorderDispatches(t *testing.T) {
	sink := &collectingSink{}
	r := NewRecorder("session-1", sink)

	r.ClassificationOutcome(types.IntentScoreEntry, 0.82, types.DecisionRoute, 120*time.Millisecond)
	r.ErrorOccurred("llm_timeout")
	r.ActionTaken("navigate")
	r.Close()

	events := sink.all()
	require.Len(t, events, 3)

	assert.Equal(t, EventClassification, events[0].Kind)
	assert.Equal(t, types.IntentScoreEntry, events[0].Intent)
	assert.InDelta(t, 0.82, events[0].Confidence, 1e-9)
	assert.Equal(t, types.DecisionRoute, events[0].Decision)
	assert.Equal(t, "session-1", events[0].SessionID)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())

	assert.Equal(t, EventError, events[1].Kind)
	assert.Equal(t, "llm_timeout", events[1].ErrorKind)

	assert.Equal(t, EventAction, events[2].Kind)
	assert.Equal(t, "navigate", events[2].Action)
}

func TestRecorderGeneratesSessionID(t *testing.T) {
	r := NewRecorder("", SinkFunc(func(Event) {}))
	defer r.Close()
	assert.NotEmpty(t, r.sessionID)
}

func TestNilRecorderIsNoOp(t *testing.T) {
	var r *Recorder
	r.ClassificationOutcome(types.IntentFeedback, 0.9, types.DecisionRoute, 0)
	r.ErrorOccurred("anything")
	r.ActionTaken("anything")
	r.Close()
	assert.Zero(t, r.Dropped())
}

func TestRecorderDropsWhenBufferFull(t *testing.T) {
	blocked := make(chan struct{})
	sink := SinkFunc(func(Event) { <-blocked })
	r := NewRecorder("session-1", sink)

	// One event occupies the sink; the rest fill the buffer and overflow.
	for i := 0; i < defaultBufferSize+10; i++ {
		r.ActionTaken("spam")
	}
	assert.Greater(t, r.Dropped(), 0)

	close(blocked)
	r.Close()
}

func TestRecordAfterCloseIsSafe(t *testing.T) {
	r := NewRecorder("session-1", SinkFunc(func(Event) {}))
	r.Close()
	r.ActionTaken("late")
	r.Close()
}
