package recovery

import (
	"container/list"
	"math/rand"
	"sync"
	"time"

	"fairway/internal/logging"
)

// Retry policy constants. Backoff doubles from Base per attempt with jitter,
// capped at Cap; after MaxAttempts the fault is surfaced instead.
const (
	DefaultBackoffBase = 250 * time.Millisecond
	DefaultBackoffCap  = 5 * time.Second
	DefaultMaxAttempts = 3
	DefaultArenaSize   = 64

	// jitterFraction keeps backoffs strictly increasing: the jitter added to
	// attempt n never exceeds the doubling gap to attempt n+1.
	jitterFraction = 0.25
)

// RetryState is the per-operation counter.
type RetryState struct {
	Attempts    int
	LastBackoff time.Duration
}

// Decision is the policy's verdict for one fault occurrence.
type Decision struct {
	Fault           *Fault
	ShouldAutoRetry bool
	Backoff         time.Duration
	Attempts        int
	Suggestions     []string
	RecoveryAction  string
}

// RetryPolicy owns the per-operation-id retry counters. Counters are keyed
// by caller-supplied ids so unrelated operations never interfere. The arena
// is LRU-bounded; callers should still Reset ids once an operation
// concludes.
type RetryPolicy struct {
	mu sync.Mutex

	base        time.Duration
	cap         time.Duration
	maxAttempts int

	capacity int
	states   map[string]*arenaEntry
	order    *list.List // front = most recently used

	rng *rand.Rand
}

type arenaEntry struct {
	state RetryState
	elem  *list.Element
}

// PolicyOption configures a RetryPolicy.
type PolicyOption func(*RetryPolicy)

// WithBackoff overrides base and cap.
func WithBackoff(base, cap time.Duration) PolicyOption {
	return func(p *RetryPolicy) {
		if base > 0 {
			p.base = base
		}
		if cap > 0 {
			p.cap = cap
		}
	}
}

// WithMaxAttempts overrides the attempt limit.
func WithMaxAttempts(n int) PolicyOption {
	return func(p *RetryPolicy) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

// WithArenaCapacity overrides the LRU bound.
func WithArenaCapacity(n int) PolicyOption {
	return func(p *RetryPolicy) {
		if n > 0 {
			p.capacity = n
		}
	}
}

// NewRetryPolicy creates a policy with the default tuning.
func NewRetryPolicy(opts ...PolicyOption) *RetryPolicy {
	p := &RetryPolicy{
		base:        DefaultBackoffBase,
		cap:         DefaultBackoffCap,
		maxAttempts: DefaultMaxAttempts,
		capacity:    DefaultArenaSize,
		states:      make(map[string]*arenaEntry),
		order:       list.New(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle classifies the error and decides recovery for the given operation
// id. Retryable kinds consume one attempt and get a backoff until the limit;
// non-retryable kinds get fallback suggestions instead.
func (p *RetryPolicy) Handle(operationID string, err error) Decision {
	fault := Classify(err)

	if !fault.ShouldAutoRetry() {
		return Decision{
			Fault:          fault,
			Suggestions:    fault.FallbackSuggestions(),
			RecoveryAction: fault.RecoveryAction(),
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	entry := p.touch(operationID)
	entry.state.Attempts++

	if entry.state.Attempts > p.maxAttempts {
		logging.Get(logging.CategoryRecovery).Info("retry budget exhausted for %s (%d attempts)",
			operationID, entry.state.Attempts-1)
		return Decision{
			Fault:          fault,
			Attempts:       entry.state.Attempts - 1,
			Suggestions:    fault.FallbackSuggestions(),
			RecoveryAction: fault.RecoveryAction(),
		}
	}

	backoff := p.backoffFor(entry.state.Attempts)
	entry.state.LastBackoff = backoff

	return Decision{
		Fault:           fault,
		ShouldAutoRetry: true,
		Backoff:         backoff,
		Attempts:        entry.state.Attempts,
	}
}

// backoffFor computes base * 2^(attempt-1) plus jitter, capped.
func (p *RetryPolicy) backoffFor(attempt int) time.Duration {
	d := p.base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.cap {
			return p.cap
		}
	}
	jitter := time.Duration(p.rng.Int63n(int64(float64(d)*jitterFraction) + 1))
	if d+jitter > p.cap {
		return p.cap
	}
	return d + jitter
}

// Reset clears the counter for an operation id.
func (p *RetryPolicy) Reset(operationID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if entry, ok := p.states[operationID]; ok {
		p.order.Remove(entry.elem)
		delete(p.states, operationID)
	}
}

// State returns a copy of the counter for inspection.
func (p *RetryPolicy) State(operationID string) (RetryState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.states[operationID]
	if !ok {
		return RetryState{}, false
	}
	return entry.state, true
}

// touch returns the entry for id, creating it and evicting the least
// recently used entry if the arena is full. Caller holds the lock.
func (p *RetryPolicy) touch(id string) *arenaEntry {
	if entry, ok := p.states[id]; ok {
		p.order.MoveToFront(entry.elem)
		return entry
	}

	if len(p.states) >= p.capacity {
		oldest := p.order.Back()
		if oldest != nil {
			evicted := oldest.Value.(string)
			p.order.Remove(oldest)
			delete(p.states, evicted)
			logging.Get(logging.CategoryRecovery).Debug("evicted retry state for %s", evicted)
		}
	}

	entry := &arenaEntry{}
	entry.elem = p.order.PushFront(id)
	p.states[id] = entry
	return entry
}
