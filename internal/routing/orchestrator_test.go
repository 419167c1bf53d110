package routing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairway/internal/types"
)

// mapChecker answers from a fixed table; absent prerequisites are unmet.
type mapChecker struct {
	mu        sync.Mutex
	satisfied map[types.Prerequisite]bool
	calls     int
}

func (c *mapChecker) IsSatisfied(_ context.Context, p types.Prerequisite) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.satisfied[p], nil
}

func routeClassification(intent types.Intent, confidence float64) types.ClassificationResult {
	parsed := types.ParsedIntent{Intent: intent, Confidence: confidence}
	result := types.ClassificationResult{Decision: types.DecisionRoute, Intent: &parsed}
	if target, ok := DefaultTarget(intent); ok {
		result.Target = &target
	}
	return result
}

func TestRouteNavigatesWhenGatesHold(t *testing.T) {
	checker := &mapChecker{satisfied: map[types.Prerequisite]bool{
		types.PrereqBagConfigured: true,
		types.PrereqRoundActive:   true,
	}}
	o := NewOrchestrator(checker)

	result := o.Route(context.Background(), routeClassification(types.IntentShotRecommendation, 0.9))
	require.Equal(t, types.OutcomeNavigate, result.Outcome)
	require.NotNil(t, result.Target)
	assert.Equal(t, "shot_recommendation", result.Target.Screen)
	assert.Equal(t, 2, checker.calls)
}

func TestRouteCollectsEveryMissingPrerequisite(t *testing.T) {
	checker := &mapChecker{satisfied: map[types.Prerequisite]bool{}}
	o := NewOrchestrator(checker)

	result := o.Route(context.Background(), routeClassification(types.IntentShotRecommendation, 0.9))
	require.Equal(t, types.OutcomePrerequisiteMissing, result.Outcome)
	// Declaration order, not completion order.
	assert.Equal(t, []types.Prerequisite{types.PrereqBagConfigured, types.PrereqRoundActive}, result.Missing)
	assert.Contains(t, result.Message, "your bag set up")
	assert.Contains(t, result.Message, "an active round")
	assert.Nil(t, result.Target)
}

func TestRouteNoNavigationSkipsChecks(t *testing.T) {
	checker := &mapChecker{satisfied: map[types.Prerequisite]bool{}}
	o := NewOrchestrator(checker)

	result := o.Route(context.Background(), routeClassification(types.IntentPatternQuery, 0.9))
	require.Equal(t, types.OutcomeNoNavigation, result.Outcome)
	assert.NotEmpty(t, result.Response)
	assert.Zero(t, checker.calls)
}

func TestRouteCheckerErrorDegrades(t *testing.T) {
	failing := PrerequisiteFunc(func(context.Context, types.Prerequisite) (bool, error) {
		return false, errors.New("store unavailable")
	})
	o := NewOrchestrator(failing)

	result := o.Route(context.Background(), routeClassification(types.IntentScoreEntry, 0.9))
	require.Equal(t, types.OutcomeNoNavigation, result.Outcome)
	assert.Contains(t, result.Response, "try again")
}

func TestRouteNilCheckerAllowsEverything(t *testing.T) {
	o := NewOrchestrator(nil)

	result := o.Route(context.Background(), routeClassification(types.IntentRecoveryCheck, 0.9))
	assert.Equal(t, types.OutcomeNavigate, result.Outcome)
}

func TestRouteNilTargetFallsBackToTable(t *testing.T) {
	o := NewOrchestrator(nil)
	parsed := types.ParsedIntent{Intent: types.IntentDrillRequest, Confidence: 0.9}

	result := o.Route(context.Background(), types.ClassificationResult{
		Decision: types.DecisionRoute,
		Intent:   &parsed,
		// Target deliberately omitted.
	})
	require.Equal(t, types.OutcomeNavigate, result.Outcome)
	require.NotNil(t, result.Target)
	assert.Equal(t, "drill_library", result.Target.Screen)
}

func TestRouteConfirmPassesThrough(t *testing.T) {
	o := NewOrchestrator(nil)
	parsed := types.ParsedIntent{Intent: types.IntentDrillRequest, Confidence: 0.6}

	result := o.Route(context.Background(), types.ClassificationResult{
		Decision: types.DecisionConfirm,
		Intent:   &parsed,
		Message:  "Did you want to find a practice drill?",
	})
	require.Equal(t, types.OutcomeConfirmationRequired, result.Outcome)
	assert.Equal(t, "Did you want to find a practice drill?", result.Message)
	assert.Nil(t, result.Target)
}

func TestRouteClarifyNeverNavigates(t *testing.T) {
	o := NewOrchestrator(nil)

	result := o.Route(context.Background(), types.ClassificationResult{
		Decision: types.DecisionClarify,
		Clarification: &types.Clarification{
			Message: "Did you mean one of these?",
			Suggestions: []types.IntentSuggestion{
				{Intent: types.IntentHelpRequest, Label: "Get help"},
			},
		},
	})
	require.Equal(t, types.OutcomeNoNavigation, result.Outcome)
	assert.Equal(t, "Did you mean one of these?", result.Response)
	assert.Nil(t, result.Target)
}

func TestRouteErrorApologizes(t *testing.T) {
	o := NewOrchestrator(nil)

	result := o.Route(context.Background(), types.ClassificationResult{
		Decision: types.DecisionError,
		Fault:    errors.New("timeout"),
	})
	require.Equal(t, types.OutcomeNoNavigation, result.Outcome)
	assert.Contains(t, result.Response, "try again")
}

func TestRouteDeterministicUnderConcurrency(t *testing.T) {
	checker := &mapChecker{satisfied: map[types.Prerequisite]bool{
		types.PrereqBagConfigured: true,
	}}
	o := NewOrchestrator(checker)
	classification := routeClassification(types.IntentShotRecommendation, 0.9)

	reference := o.Route(context.Background(), classification)

	var wg sync.WaitGroup
	results := make([]types.RoutingResult, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.Route(context.Background(), classification)
		}()
	}
	wg.Wait()

	for i, r := range results {
		if diff := cmp.Diff(reference, r); diff != "" {
			t.Fatalf("result %d differs (-reference +got):\n%s", i, diff)
		}
	}
}

func TestPrerequisiteTablesComplete(t *testing.T) {
	// Every navigable intent has a target; no-navigation intents have none.
	for _, intent := range types.KnownIntents {
		_, hasTarget := DefaultTarget(intent)
		_, noNav := NoNavigationResponse(intent)
		assert.False(t, hasTarget && noNav, "%s is both navigable and no-navigation", intent)
		assert.True(t, hasTarget || noNav, "%s has neither target nor canned response", intent)
	}

	// Prerequisites only reference navigable intents.
	for intent := range intentPrerequisites {
		_, ok := DefaultTarget(intent)
		assert.True(t, ok, "%s has prerequisites but no target", intent)
	}
}

func TestDefaultTargetReturnsCopies(t *testing.T) {
	a, ok := DefaultTarget(types.IntentScoreEntry)
	require.True(t, ok)
	a.Parameters["hole"] = "5"

	b, ok := DefaultTarget(types.IntentScoreEntry)
	require.True(t, ok)
	assert.Empty(t, b.Parameters)
}
