// Package perception talks to the external classification service and turns
// its free-form response into a deterministic, confidence-tiered decision.
// The LLM describes what it thinks the user wants; everything that acts on
// that description is table-driven and replayable.
package perception

import (
	"context"
	"time"
)

const classifierSystemPrompt = `You are the intent classifier for a golf caddy app.
Classify the user's request into exactly one intent and respond with ONLY a JSON object:
{"intent": "<label>", "confidence": <0.0-1.0>, "entities": {...}, "user_goal": "<short paraphrase>"}
Known intents: club_adjustment, shot_recommendation, score_entry, round_start, round_end,
weather_check, pattern_query, drill_request, stats_lookup, swing_analysis, recovery_check,
bag_setup, settings_change, help_request, feedback.
Entities (all optional): club, yardage, lie, wind, fatigue (1-10), pain, score_context, hole_number (1-18).
Ground the classification only in the request and the provided session context.`

// LLMClient is the narrow contract with the external classification service.
// Implementations must honor ctx cancellation and surface transport problems
// as errors; they never interpret the response.
type LLMClient interface {
	// Classify sends the user text plus a serialized context fragment and
	// returns the raw response body.
	Classify(ctx context.Context, text, contextFragment string) (string, error)

	// Name identifies the provider for logging and analytics.
	Name() string
}

// ClientConfig holds provider-independent settings.
type ClientConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}
