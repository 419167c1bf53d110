package recovery

import (
	"time"

	"fairway/internal/logging"

	"github.com/sony/gobreaker"
)

// NewClassifyBreaker builds the circuit breaker wrapped around the external
// classification call. An open circuit maps to KindNetworkUnavailable via
// Classify, which feeds the session pattern detector — the user gets steered
// toward offline mode instead of hammering a failing dependency.
func NewClassifyBreaker() *gobreaker.CircuitBreaker {
	settings := gobreaker.Settings{
		Name:        "classify",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Get(logging.CategoryRecovery).Warn("breaker %s: %s -> %s", name, from, to)
		},
	}
	return gobreaker.NewCircuitBreaker(settings)
}
