// Package routing maps classified intents onto concrete routing outcomes.
// All mapping is static table lookup — the intent→module assignment, the
// per-intent prerequisite lists and the required-entity lists are fixed at
// compile time so identical inputs always route identically.
package routing

import "fairway/internal/types"

// intentTargets is the single static intent→destination table. Intents in
// the no-navigation set are deliberately absent.
var intentTargets = map[types.Intent]types.RoutingTarget{
	types.IntentClubAdjustment:     {Module: types.ModuleCaddy, Screen: "club_adjustment"},
	types.IntentShotRecommendation: {Module: types.ModuleCaddy, Screen: "shot_recommendation"},
	types.IntentScoreEntry:         {Module: types.ModuleCaddy, Screen: "score_entry"},
	types.IntentRoundStart:         {Module: types.ModuleCaddy, Screen: "round_setup"},
	types.IntentRoundEnd:           {Module: types.ModuleCaddy, Screen: "round_summary"},
	types.IntentWeatherCheck:       {Module: types.ModuleCaddy, Screen: "weather"},
	types.IntentDrillRequest:       {Module: types.ModuleCoach, Screen: "drill_library"},
	types.IntentStatsLookup:        {Module: types.ModuleCoach, Screen: "stats"},
	types.IntentSwingAnalysis:      {Module: types.ModuleCoach, Screen: "swing_analysis"},
	types.IntentRecoveryCheck:      {Module: types.ModuleRecovery, Screen: "readiness"},
	types.IntentBagSetup:           {Module: types.ModuleSettings, Screen: "bag_editor"},
	types.IntentSettingsChange:     {Module: types.ModuleSettings, Screen: "preferences"},
}

// intentPrerequisites lists the gates per intent, in check order.
var intentPrerequisites = map[types.Intent][]types.Prerequisite{
	types.IntentClubAdjustment:     {types.PrereqBagConfigured},
	types.IntentShotRecommendation: {types.PrereqBagConfigured, types.PrereqRoundActive},
	types.IntentScoreEntry:         {types.PrereqRoundActive},
	types.IntentRoundStart:         {types.PrereqCourseSelected},
	types.IntentRoundEnd:           {types.PrereqRoundActive},
	types.IntentWeatherCheck:       {types.PrereqCourseSelected},
	types.IntentRecoveryCheck:      {types.PrereqRecoveryData},
}

// requiredEntities lists the entities an intent cannot route without. The
// classifier downgrades route→confirm when one is absent.
var requiredEntities = map[types.Intent][]string{
	types.IntentClubAdjustment: {"club"},
	types.IntentScoreEntry:     {"hole_number"},
}

// noNavigation is the fixed set of intents that answer in place. These skip
// prerequisite checks entirely.
var noNavigation = map[types.Intent]string{
	types.IntentPatternQuery: "Here's what I see in your recent misses. Your most common miss is tracked per club — ask about a specific club for details.",
	types.IntentHelpRequest:  "You can ask me for club recommendations, log scores, check your readiness, or review your miss patterns. Just say it in your own words.",
	types.IntentFeedback:     "Thanks — noted. I pass along everything you tell me.",
}

// DefaultTarget returns the static routing target for an intent. Intents in
// the no-navigation set and unknown intents have none.
func DefaultTarget(intent types.Intent) (types.RoutingTarget, bool) {
	t, ok := intentTargets[intent]
	if !ok {
		return types.RoutingTarget{}, false
	}
	// Copy the parameter map so callers can attach entities without
	// mutating the table.
	t.Parameters = map[string]string{}
	return t, true
}

// PrerequisitesFor returns the static prerequisite list for an intent.
func PrerequisitesFor(intent types.Intent) []types.Prerequisite {
	return intentPrerequisites[intent]
}

// RequiredEntities returns the entity names an intent needs before routing.
func RequiredEntities(intent types.Intent) []string {
	return requiredEntities[intent]
}

// NoNavigationResponse returns the canned in-place answer for intents that
// never navigate.
func NoNavigationResponse(intent types.Intent) (string, bool) {
	resp, ok := noNavigation[intent]
	return resp, ok
}
