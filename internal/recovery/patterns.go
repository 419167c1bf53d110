package recovery

import (
	"sync"

	"fairway/internal/logging"
)

// Pattern is a session-level failure pattern. These let the caller offer a
// persistent fallback (offline mode, typed input) instead of replaying the
// same dead end at the user.
type Pattern string

const (
	PatternRepeatedTimeouts   Pattern = "repeated_timeouts"
	PatternNetworkInstability Pattern = "network_instability"
	PatternPermissionIssues   Pattern = "permission_issues"
)

// patternThreshold is how many occurrences of a kind flag a pattern.
const patternThreshold = 3

// PatternDetector accumulates fault kinds over a session.
type PatternDetector struct {
	mu     sync.Mutex
	counts map[Kind]int
}

// NewPatternDetector creates an empty detector.
func NewPatternDetector() *PatternDetector {
	return &PatternDetector{counts: make(map[Kind]int)}
}

// Record notes one fault occurrence.
func (d *PatternDetector) Record(fault *Fault) {
	if fault == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counts[fault.Kind]++
	if d.counts[fault.Kind] == patternThreshold {
		logging.Get(logging.CategoryRecovery).Warn("failure pattern emerging: %s x%d",
			fault.Kind, patternThreshold)
	}
}

// Patterns returns the currently flagged patterns in a fixed order.
func (d *PatternDetector) Patterns() []Pattern {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Pattern
	if d.counts[KindLLMTimeout] >= patternThreshold {
		out = append(out, PatternRepeatedTimeouts)
	}
	if d.counts[KindLLMNetworkError]+d.counts[KindNetworkUnavailable] >= patternThreshold {
		out = append(out, PatternNetworkInstability)
	}
	if d.counts[KindVoicePermissionDenied] > 0 {
		out = append(out, PatternPermissionIssues)
	}
	return out
}

// Reset clears accumulated counts (new session).
func (d *PatternDetector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts = make(map[Kind]int)
}
