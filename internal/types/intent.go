// Package types defines the shared vocabulary of the fairway engine: the
// closed intent set, extracted entities, routing targets, prerequisites and
// the result variants that flow between the classifier, the orchestrator and
// the navigation executor.
//
// Everything in this package is plain data. Components that make decisions
// (perception, routing, nav) consume these types; nothing here has behavior
// beyond validation helpers.
package types

import "strings"

// Intent is a closed-set classification label describing what the user wants.
type Intent string

// The fifteen known intents. IntentUnknown is the sentinel for anything the
// classifier could not map into the known set and is deliberately outside it.
const (
	IntentClubAdjustment     Intent = "club_adjustment"
	IntentShotRecommendation Intent = "shot_recommendation"
	IntentScoreEntry         Intent = "score_entry"
	IntentRoundStart         Intent = "round_start"
	IntentRoundEnd           Intent = "round_end"
	IntentWeatherCheck       Intent = "weather_check"
	IntentPatternQuery       Intent = "pattern_query"
	IntentDrillRequest       Intent = "drill_request"
	IntentStatsLookup        Intent = "stats_lookup"
	IntentSwingAnalysis      Intent = "swing_analysis"
	IntentRecoveryCheck      Intent = "recovery_check"
	IntentBagSetup           Intent = "bag_setup"
	IntentSettingsChange     Intent = "settings_change"
	IntentHelpRequest        Intent = "help_request"
	IntentFeedback           Intent = "feedback"

	IntentUnknown Intent = "unknown"
)

// KnownIntents lists every intent the classifier may emit, in a fixed order.
// Order matters for deterministic iteration (clarification ranking, tests).
var KnownIntents = []Intent{
	IntentClubAdjustment,
	IntentShotRecommendation,
	IntentScoreEntry,
	IntentRoundStart,
	IntentRoundEnd,
	IntentWeatherCheck,
	IntentPatternQuery,
	IntentDrillRequest,
	IntentStatsLookup,
	IntentSwingAnalysis,
	IntentRecoveryCheck,
	IntentBagSetup,
	IntentSettingsChange,
	IntentHelpRequest,
	IntentFeedback,
}

// ParseIntent maps a raw label from the classification service onto the known
// set. Unrecognized labels come back as IntentUnknown with ok=false; the
// caller degrades to the clarification path, never to an error.
func ParseIntent(raw string) (Intent, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	// Accept both snake_case wire labels and the camelCase labels some
	// prompt revisions produce.
	switch normalized {
	case "clubadjustment":
		normalized = string(IntentClubAdjustment)
	case "shotrecommendation":
		normalized = string(IntentShotRecommendation)
	case "scoreentry":
		normalized = string(IntentScoreEntry)
	case "roundstart":
		normalized = string(IntentRoundStart)
	case "roundend":
		normalized = string(IntentRoundEnd)
	case "weathercheck":
		normalized = string(IntentWeatherCheck)
	case "patternquery":
		normalized = string(IntentPatternQuery)
	case "drillrequest":
		normalized = string(IntentDrillRequest)
	case "statslookup":
		normalized = string(IntentStatsLookup)
	case "swinganalysis":
		normalized = string(IntentSwingAnalysis)
	case "recoverycheck":
		normalized = string(IntentRecoveryCheck)
	case "bagsetup":
		normalized = string(IntentBagSetup)
	case "settingschange":
		normalized = string(IntentSettingsChange)
	case "helprequest":
		normalized = string(IntentHelpRequest)
	}

	candidate := Intent(normalized)
	for _, known := range KnownIntents {
		if candidate == known {
			return known, true
		}
	}
	return IntentUnknown, false
}

// Label returns a short human-readable form used in clarification prompts.
func (i Intent) Label() string {
	switch i {
	case IntentClubAdjustment:
		return "Adjust a club"
	case IntentShotRecommendation:
		return "Get a shot recommendation"
	case IntentScoreEntry:
		return "Enter a score"
	case IntentRoundStart:
		return "Start a round"
	case IntentRoundEnd:
		return "Finish the round"
	case IntentWeatherCheck:
		return "Check the weather"
	case IntentPatternQuery:
		return "Review your miss patterns"
	case IntentDrillRequest:
		return "Find a practice drill"
	case IntentStatsLookup:
		return "Look up your stats"
	case IntentSwingAnalysis:
		return "Analyze your swing"
	case IntentRecoveryCheck:
		return "Check your readiness"
	case IntentBagSetup:
		return "Set up your bag"
	case IntentSettingsChange:
		return "Change settings"
	case IntentHelpRequest:
		return "Get help"
	case IntentFeedback:
		return "Leave feedback"
	default:
		return "Something else"
	}
}

// Known reports whether the intent belongs to the closed known set.
func (i Intent) Known() bool {
	_, ok := ParseIntent(string(i))
	return ok
}
