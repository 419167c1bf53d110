package engine

import (
	"context"
	"sync"

	"fairway/internal/session"
	"fairway/internal/types"
)

// PrereqState is the default prerequisite checker. Round activity comes from
// the live session store; the remaining gates are app-level flags the host
// flips as the user completes setup.
type PrereqState struct {
	mu    sync.Mutex
	store *session.ContextStore
	flags map[types.Prerequisite]bool
}

// NewPrereqState creates a checker with every flag unset.
func NewPrereqState(store *session.ContextStore) *PrereqState {
	return &PrereqState{
		store: store,
		flags: map[types.Prerequisite]bool{},
	}
}

// Set flips one prerequisite flag. Setting PrereqRoundActive is ignored;
// that gate always reads from the session store.
func (s *PrereqState) Set(prereq types.Prerequisite, satisfied bool) {
	if prereq == types.PrereqRoundActive {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[prereq] = satisfied
}

// IsSatisfied implements routing.PrerequisiteChecker.
func (s *PrereqState) IsSatisfied(_ context.Context, prereq types.Prerequisite) (bool, error) {
	if prereq == types.PrereqRoundActive {
		return s.store != nil && s.store.Snapshot().RoundActive(), nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags[prereq], nil
}
