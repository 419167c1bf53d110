// Package session owns conversational memory: a bounded turn log plus the
// round state (current round, hole, last shot, last recommendation) that the
// classifier prompt is built from.
//
// The ContextStore is the single owner and mutator of this state. All
// mutation goes through coarse named methods that are individually atomic;
// callers needing cross-call ordering serialize their own calls.
package session

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fairway/internal/logging"
	"fairway/internal/types"
)

// DefaultHistoryCapacity is the turn ring size when none is configured.
const DefaultHistoryCapacity = 10

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one conversational exchange entry.
type Turn struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Intent    types.Intent `json:"intent,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// Snapshot is an immutable copy of session state, safe to read without
// holding the store's lock.
type Snapshot struct {
	SessionID          string
	CurrentRoundID     string
	CurrentHole        int
	LastShot           string
	LastRecommendation string
	History            []Turn // oldest first
}

// RoundActive reports whether a round id is recorded.
func (s Snapshot) RoundActive() bool { return s.CurrentRoundID != "" }

// ContextStore is the exclusive owner of session state.
type ContextStore struct {
	mu sync.Mutex

	sessionID          string
	currentRoundID     string
	currentHole        int
	lastShot           string
	lastRecommendation string

	history  []Turn
	capacity int
	turnSeq  int // monotonic, survives eviction; keys persisted turns

	repo Repository // optional write-through persistence
}

// Option configures a ContextStore.
type Option func(*ContextStore)

// WithCapacity overrides the turn ring size.
func WithCapacity(n int) Option {
	return func(s *ContextStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithRepository attaches write-through persistence. Repository failures are
// logged and never surfaced to callers.
func WithRepository(r Repository) Option {
	return func(s *ContextStore) { s.repo = r }
}

// NewContextStore creates an empty store for the given session id.
func NewContextStore(sessionID string, opts ...Option) *ContextStore {
	s := &ContextStore{
		sessionID: sessionID,
		capacity:  DefaultHistoryCapacity,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTurn appends a turn, evicting the oldest once capacity is reached.
func (s *ContextStore) AddTurn(turn Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}
	s.history = append(s.history, turn)
	if len(s.history) > s.capacity {
		s.history = s.history[len(s.history)-s.capacity:]
	}
	s.turnSeq++

	s.persistTurn(turn, s.turnSeq)
}

// RecordShot stores the most recent shot description.
func (s *ContextStore) RecordShot(shot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastShot = shot
	s.persistState()
}

// RecordRecommendation stores the most recent recommendation given.
func (s *ContextStore) RecordRecommendation(rec string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRecommendation = rec
	s.persistState()
}

// UpdateRound sets the active round id. Empty clears it.
func (s *ContextStore) UpdateRound(roundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoundID = roundID
	s.persistState()
}

// UpdateHole sets the current hole. Out-of-range values are ignored.
func (s *ContextStore) UpdateHole(hole int) {
	if hole < 1 || hole > 18 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentHole = hole
	s.persistState()
}

// Clear resets everything except the session id.
func (s *ContextStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentRoundID = ""
	s.currentHole = 0
	s.lastShot = ""
	s.lastRecommendation = ""
	s.history = nil
	s.persistState()
}

// Snapshot returns a copy of the current state, oldest turn first.
func (s *ContextStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]Turn, len(s.history))
	copy(history, s.history)

	return Snapshot{
		SessionID:          s.sessionID,
		CurrentRoundID:     s.currentRoundID,
		CurrentHole:        s.currentHole,
		LastShot:           s.lastShot,
		LastRecommendation: s.lastRecommendation,
		History:            history,
	}
}

// Serialize renders the snapshot as the deterministic prompt fragment handed
// to the classifier. Identical state always yields identical bytes.
func (s Snapshot) Serialize() string {
	var sb strings.Builder

	sb.WriteString("## Session\n")
	if s.CurrentRoundID != "" {
		fmt.Fprintf(&sb, "round: active (%s)\n", s.CurrentRoundID)
	} else {
		sb.WriteString("round: none\n")
	}
	if s.CurrentHole > 0 {
		fmt.Fprintf(&sb, "hole: %d\n", s.CurrentHole)
	}
	if s.LastShot != "" {
		fmt.Fprintf(&sb, "last shot: %s\n", s.LastShot)
	}
	if s.LastRecommendation != "" {
		fmt.Fprintf(&sb, "last recommendation: %s\n", s.LastRecommendation)
	}

	if len(s.History) > 0 {
		sb.WriteString("## Recent Conversation\n")
		for _, turn := range s.History {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
		}
	}

	return sb.String()
}

// persistTurn and persistState are best-effort write-through. Callers hold
// the lock.
func (s *ContextStore) persistTurn(turn Turn, turnNumber int) {
	if s.repo == nil {
		return
	}
	if err := s.repo.AddTurn(s.sessionID, turnNumber, turn); err != nil {
		logging.Get(logging.CategorySession).Warn("failed to persist turn: %v", err)
	}
}

func (s *ContextStore) persistState() {
	if s.repo == nil {
		return
	}
	state := PersistedSession{
		ID:                 s.sessionID,
		RoundID:            s.currentRoundID,
		Hole:               s.currentHole,
		LastShot:           s.lastShot,
		LastRecommendation: s.lastRecommendation,
	}
	if err := s.repo.SaveSession(state); err != nil {
		logging.Get(logging.CategorySession).Warn("failed to persist session: %v", err)
	}
}
