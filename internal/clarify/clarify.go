// Package clarify builds the question shown when classification confidence
// falls below the confirm band. The generator is deterministic: the same
// normalized input and session snapshot always produce the same message and
// the same 1..3 suggestions, so the conversational surface can be tested
// byte-for-byte.
package clarify

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"fairway/internal/logging"
	"fairway/internal/session"
	"fairway/internal/types"
)

const maxSuggestions = 3

// fuzzyMaxDistance is the edit-distance ceiling for treating an input token
// as a keyword hit. Distance 1 catches single typos ("drll", "scor") without
// letting short words collide.
const fuzzyMaxDistance = 1

// roundBiasWeight nudges the round-state-relevant intents ahead of equally
// scored keyword hits.
const roundBiasWeight = 1

type keywordRule struct {
	keywords []string
	intent   types.Intent
	weight   int
}

// keywordRules map surface vocabulary onto candidate intents. Rules are
// scored additively; several rules may hit the same input.
var keywordRules = []keywordRule{
	{[]string{"club", "iron", "wedge", "driver", "putter", "hybrid", "long", "short"}, types.IntentClubAdjustment, 2},
	{[]string{"yardage", "distance", "carry", "hit", "pin", "flag"}, types.IntentShotRecommendation, 2},
	{[]string{"score", "bogey", "birdie", "par", "eagle", "double"}, types.IntentScoreEntry, 2},
	{[]string{"round", "tee", "course", "play"}, types.IntentRoundStart, 1},
	{[]string{"weather", "wind", "rain", "forecast"}, types.IntentWeatherCheck, 2},
	{[]string{"miss", "tendency", "pattern", "slice", "hook", "pull", "push"}, types.IntentPatternQuery, 2},
	{[]string{"drill", "practice", "range", "work"}, types.IntentDrillRequest, 2},
	{[]string{"stats", "average", "handicap", "numbers"}, types.IntentStatsLookup, 2},
	{[]string{"swing", "takeaway", "tempo", "plane"}, types.IntentSwingAnalysis, 2},
	{[]string{"tired", "sore", "pain", "fatigue", "readiness", "recovery", "hurt"}, types.IntentRecoveryCheck, 2},
	{[]string{"bag", "setup"}, types.IntentBagSetup, 1},
	{[]string{"settings", "preferences", "units"}, types.IntentSettingsChange, 1},
	{[]string{"help", "how"}, types.IntentHelpRequest, 1},
}

// roundActiveBias lists intents that become likelier mid-round;
// roundInactiveBias lists the ones likelier between rounds. Exactly one
// list applies per call, and the same list doubles as the fallback when the
// input matches no vocabulary at all.
var (
	roundActiveBias = []types.Intent{
		types.IntentShotRecommendation,
		types.IntentScoreEntry,
		types.IntentPatternQuery,
		types.IntentWeatherCheck,
	}
	roundInactiveBias = []types.Intent{
		types.IntentRoundStart,
		types.IntentRecoveryCheck,
		types.IntentStatsLookup,
	}
)

// Generator produces clarification prompts.
type Generator struct{}

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate builds the clarification for a low-confidence turn. hint is the
// classifier's sub-threshold guess, or nil when the response was unknown or
// unparseable. A known hint is always the first suggestion; keyword hits can
// never push it out.
func (g *Generator) Generate(normalizedInput string, hint *types.ParsedIntent, snapshot session.Snapshot) types.Clarification {
	scores := map[types.Intent]int{}

	tokens := tokenize(normalizedInput)
	for _, rule := range keywordRules {
		if hits := matchCount(tokens, rule.keywords); hits > 0 {
			scores[rule.intent] += hits * rule.weight
		}
	}

	bias := roundInactiveBias
	if snapshot.RoundActive() {
		bias = roundActiveBias
	}
	for _, intent := range bias {
		if scores[intent] > 0 {
			scores[intent] += roundBiasWeight
		}
	}

	candidates := []types.Intent{}
	if hint != nil && hint.Intent.Known() {
		candidates = append(candidates, hint.Intent)
	}
	ranked := rank(scores)
	candidates = append(candidates, ranked...)
	if len(ranked) == 0 {
		// Nothing in the input matched; pad with the round-state fallback
		// so the user always sees alternatives.
		candidates = append(candidates, bias...)
	}

	suggestions := make([]types.IntentSuggestion, 0, maxSuggestions)
	seen := map[string]bool{}
	for _, intent := range candidates {
		label := intent.Label()
		if seen[label] {
			continue
		}
		seen[label] = true
		suggestions = append(suggestions, types.IntentSuggestion{Intent: intent, Label: label})
		if len(suggestions) == maxSuggestions {
			break
		}
	}

	message := "I'm not sure what you're after. Did you mean one of these?"
	if hint != nil && hint.Intent.Known() {
		message = "I think you might want to " + strings.ToLower(hint.Intent.Label()) + ", but I'm not sure. Did you mean one of these?"
	}

	logging.Get(logging.CategoryClarify).Debug("clarification for %q: %d suggestions", normalizedInput, len(suggestions))

	return types.Clarification{Message: message, Suggestions: suggestions}
}

// rank orders scored intents by score descending, breaking ties by the fixed
// vocabulary order so output is stable.
func rank(scores map[types.Intent]int) []types.Intent {
	out := make([]types.Intent, 0, len(scores))
	for _, intent := range types.KnownIntents {
		if scores[intent] > 0 {
			out = append(out, intent)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return scores[out[i]] > scores[out[j]]
	})
	return out
}

func tokenize(input string) []string {
	fields := strings.Fields(strings.ToLower(input))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:'\"")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// matchCount counts keyword hits in the token list, exact first and then a
// single-edit fuzzy pass for tokens long enough to make distance meaningful.
func matchCount(tokens, keywords []string) int {
	hits := 0
	for _, kw := range keywords {
		for _, tok := range tokens {
			if tok == kw {
				hits++
				continue
			}
			if len(kw) >= 4 && len(tok) >= 4 && levenshtein.ComputeDistance(tok, kw) <= fuzzyMaxDistance {
				hits++
			}
		}
	}
	return hits
}
