package clarify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairway/internal/session"
	"fairway/internal/types"
)

func TestGenerateKeywordMatch(t *testing.T) {
	g := NewGenerator()

	c := g.Generate("something about my 7-iron and wedge", nil, session.Snapshot{})
	require.NotEmpty(t, c.Suggestions)
	assert.Equal(t, types.IntentClubAdjustment, c.Suggestions[0].Intent)
}

func TestGenerateFuzzyMatch(t *testing.T) {
	g := NewGenerator()

	// "drll" is one edit from "drill".
	c := g.Generate("need a drll", nil, session.Snapshot{})
	require.NotEmpty(t, c.Suggestions)
	assert.Equal(t, types.IntentDrillRequest, c.Suggestions[0].Intent)
}

func TestGenerateHintLeads(t *testing.T) {
	g := NewGenerator()
	hint := &types.ParsedIntent{Intent: types.IntentWeatherCheck, Confidence: 0.35}

	c := g.Generate("something about my club", hint, session.Snapshot{})
	require.NotEmpty(t, c.Suggestions)
	assert.Equal(t, types.IntentWeatherCheck, c.Suggestions[0].Intent)
	assert.Contains(t, c.Message, "check the weather")
}

func TestGenerateDefaultsOnNoMatch(t *testing.T) {
	g := NewGenerator()

	// Between rounds the fallback leans toward starting one.
	c := g.Generate("xyzzy plugh", nil, session.Snapshot{})
	require.Len(t, c.Suggestions, 3)
	assert.Equal(t, types.IntentRoundStart, c.Suggestions[0].Intent)
	assert.Equal(t, types.IntentRecoveryCheck, c.Suggestions[1].Intent)
	assert.Equal(t, types.IntentStatsLookup, c.Suggestions[2].Intent)

	// Mid-round the fallback leans toward in-round actions.
	store := session.NewContextStore("clarify-defaults")
	store.UpdateRound("round-9")
	c = g.Generate("", nil, store.Snapshot())
	require.Len(t, c.Suggestions, 3)
	assert.Equal(t, types.IntentShotRecommendation, c.Suggestions[0].Intent)
	assert.Equal(t, types.IntentScoreEntry, c.Suggestions[1].Intent)
	assert.Equal(t, types.IntentPatternQuery, c.Suggestions[2].Intent)
}

func TestGenerateHintSurvivesKeywordFlood(t *testing.T) {
	g := NewGenerator()
	hint := &types.ParsedIntent{Intent: types.IntentWeatherCheck, Confidence: 0.30}

	// Enough keyword hits to fill the list three times over; the hint must
	// still lead it.
	c := g.Generate("club iron wedge score par bogey drill practice range", hint, session.Snapshot{})
	require.Len(t, c.Suggestions, 3)
	assert.Equal(t, types.IntentWeatherCheck, c.Suggestions[0].Intent)
}

func TestGenerateInactiveRoundBias(t *testing.T) {
	g := NewGenerator()

	// "club" and "stats" score equally; between rounds the stats suggestion
	// wins, mid-round the tie falls back to vocabulary order.
	inactive := g.Generate("my club stats", nil, session.Snapshot{})
	require.NotEmpty(t, inactive.Suggestions)
	assert.Equal(t, types.IntentStatsLookup, inactive.Suggestions[0].Intent)

	store := session.NewContextStore("clarify-inactive")
	store.UpdateRound("round-3")
	active := g.Generate("my club stats", nil, store.Snapshot())
	require.NotEmpty(t, active.Suggestions)
	assert.Equal(t, types.IntentClubAdjustment, active.Suggestions[0].Intent)
}

func TestGenerateCapsAtThree(t *testing.T) {
	g := NewGenerator()

	c := g.Generate("club score drill stats swing weather", nil, session.Snapshot{})
	assert.LessOrEqual(t, len(c.Suggestions), 3)
	assert.GreaterOrEqual(t, len(c.Suggestions), 1)

	seen := map[string]bool{}
	for _, s := range c.Suggestions {
		assert.False(t, seen[s.Label], "duplicate label %q", s.Label)
		seen[s.Label] = true
	}
}

func TestGenerateRoundActiveBias(t *testing.T) {
	g := NewGenerator()

	store := session.NewContextStore("clarify-test")
	store.UpdateRound("round-1")
	active := store.Snapshot()

	// "club" and "par" score their intents equally; the tie breaks on fixed
	// vocabulary order unless the round bias lifts score entry ahead.
	inactive := g.Generate("wondering about my club after that par", nil, session.Snapshot{})
	withRound := g.Generate("wondering about my club after that par", nil, active)

	require.NotEmpty(t, inactive.Suggestions)
	require.NotEmpty(t, withRound.Suggestions)
	assert.Equal(t, types.IntentClubAdjustment, inactive.Suggestions[0].Intent)
	assert.Equal(t, types.IntentScoreEntry, withRound.Suggestions[0].Intent)
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewGenerator()

	first := g.Generate("my swing feels off and my scores show it", nil, session.Snapshot{})
	for i := 0; i < 10; i++ {
		again := g.Generate("my swing feels off and my scores show it", nil, session.Snapshot{})
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("clarification differs across runs (-first +again):\n%s", diff)
		}
	}
}
