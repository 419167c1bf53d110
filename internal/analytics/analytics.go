// Package analytics records classification and routing telemetry. Dispatch
// is asynchronous and lossy: a full buffer drops events rather than ever
// blocking the request path.
package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fairway/internal/logging"
	"fairway/internal/types"
)

// EventKind discriminates Event payloads.
type EventKind string

const (
	EventClassification EventKind = "classification_outcome"
	EventError          EventKind = "error_occurred"
	EventAction         EventKind = "action_taken"
)

// Event is one telemetry record. Payload fields are populated per kind.
type Event struct {
	ID         string         `json:"id"`
	SessionID  string         `json:"session_id"`
	Kind       EventKind      `json:"kind"`
	Timestamp  time.Time      `json:"timestamp"`
	Intent     types.Intent   `json:"intent,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
	Decision   types.Decision `json:"decision,omitempty"`
	Latency    time.Duration  `json:"latency,omitempty"`
	ErrorKind  string         `json:"error_kind,omitempty"`
	Action     string         `json:"action,omitempty"`
}

// Sink receives dispatched events. Record runs on the dispatcher goroutine,
// never on the request path.
type Sink interface {
	Record(event Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Record calls f.
func (f SinkFunc) Record(event Event) { f(event) }

const defaultBufferSize = 256

// Recorder stamps, buffers and dispatches events. A nil Recorder is a valid
// no-op, so wiring analytics stays optional everywhere.
type Recorder struct {
	sessionID string
	events    chan Event
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	closed  bool
	dropped int
}

// NewRecorder starts a recorder dispatching to sink. sessionID may be empty,
// in which case a fresh UUID is assigned.
func NewRecorder(sessionID string, sink Sink) *Recorder {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	r := &Recorder{
		sessionID: sessionID,
		events:    make(chan Event, defaultBufferSize),
		done:      make(chan struct{}),
	}
	go r.dispatch(sink)
	return r
}

// ClassificationOutcome records one classified turn.
func (r *Recorder) ClassificationOutcome(intent types.Intent, confidence float64, decision types.Decision, latency time.Duration) {
	r.record(Event{
		Kind:       EventClassification,
		Intent:     intent,
		Confidence: confidence,
		Decision:   decision,
		Latency:    latency,
	})
}

// ErrorOccurred records a fault by its recovery kind.
func (r *Recorder) ErrorOccurred(kind string) {
	r.record(Event{Kind: EventError, ErrorKind: kind})
}

// ActionTaken records a navigation or recovery action.
func (r *Recorder) ActionTaken(action string) {
	r.record(Event{Kind: EventAction, Action: action})
}

func (r *Recorder) record(event Event) {
	if r == nil {
		return
	}
	event.ID = uuid.NewString()
	event.SessionID = r.sessionID
	event.Timestamp = time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.events <- event:
	default:
		r.dropped++
		logging.Get(logging.CategoryAnalytics).Debug("buffer full, dropped event (%d total)", r.dropped)
	}
}

// Dropped returns the number of events lost to a full buffer.
func (r *Recorder) Dropped() int {
	if r == nil {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Close drains pending events and stops the dispatcher. Events recorded
// after Close are dropped.
func (r *Recorder) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.events)
		r.mu.Unlock()
		<-r.done
	})
}

func (r *Recorder) dispatch(sink Sink) {
	defer close(r.done)
	for event := range r.events {
		if sink != nil {
			sink.Record(event)
		}
	}
}
