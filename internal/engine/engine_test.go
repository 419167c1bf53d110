package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fairway/internal/nav"
	"fairway/internal/perception"
	"fairway/internal/recovery"
	"fairway/internal/session"
	"fairway/internal/types"
)

func TestMain(m *testing.M) {
	// go.opencensus.io starts a background worker goroutine in its package
	// init that can never be stopped; it is not a leak from this package.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// failingClient always returns the same error and counts calls.
type failingClient struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (c *failingClient) Classify(context.Context, string, string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "", c.err
}

func (c *failingClient) Name() string { return "failing" }

func (c *failingClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestEngine(t *testing.T, client perception.LLMClient) *Engine {
	t.Helper()
	return New(client, Options{
		SessionID: "engine-test",
		Retries:   recovery.NewRetryPolicy(recovery.WithBackoff(time.Millisecond, 5*time.Millisecond)),
	})
}

func TestHandleInputNavigates(t *testing.T) {
	e := newTestEngine(t, perception.NewOfflineClient())
	e.State().Set(types.PrereqBagConfigured, true)

	result := e.HandleInput(context.Background(), "My 7i feels long today")
	require.Equal(t, nav.ActionNavigated, result.Action.Kind)
	require.NotNil(t, result.Action.Destination)
	assert.Equal(t, "club_adjustment", result.Action.Destination.Screen)
	assert.Equal(t, "7-iron", result.Action.Destination.Params["club"])
	assert.Equal(t, 1, e.Executor().Depth())
}

func TestHandleInputVagueInputClarifies(t *testing.T) {
	e := newTestEngine(t, perception.NewOfflineClient())

	result := e.HandleInput(context.Background(), "It feels weird out there")
	require.Equal(t, types.DecisionClarify, result.Classification.Decision)
	require.NotNil(t, result.Classification.Clarification)
	n := len(result.Classification.Clarification.Suggestions)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 3)
	assert.Equal(t, nav.ActionShowResponse, result.Action.Kind)
	assert.Zero(t, e.Executor().Depth())
}

func TestHandleInputBlockedPrerequisite(t *testing.T) {
	e := newTestEngine(t, perception.NewOfflineClient())

	result := e.HandleInput(context.Background(), "How's my recovery looking?")
	require.Equal(t, nav.ActionPrerequisitePrompt, result.Action.Kind)
	assert.Equal(t, []types.Prerequisite{types.PrereqRecoveryData}, result.Action.Missing)
	assert.Contains(t, result.Action.Message, "recovery data recorded")
	assert.Zero(t, e.Executor().Depth())
}

func TestHandleInputRetriesThenSurfaces(t *testing.T) {
	client := &failingClient{err: context.DeadlineExceeded}
	e := newTestEngine(t, client)

	result := e.HandleInput(context.Background(), "anything")
	require.Equal(t, nav.ActionShowError, result.Action.Kind)
	require.NotNil(t, result.Recovery)
	assert.Equal(t, recovery.KindLLMTimeout, result.Recovery.Fault.Kind)
	// Initial call plus the full retry budget.
	assert.Equal(t, recovery.DefaultMaxAttempts+1, client.callCount())
}

func TestHandleInputNonRetryableFaultIsImmediate(t *testing.T) {
	client := &failingClient{err: recovery.NewFault(recovery.KindVoicePermissionDenied, "denied")}
	e := newTestEngine(t, client)

	result := e.HandleInput(context.Background(), "anything")
	require.Equal(t, nav.ActionShowError, result.Action.Kind)
	assert.Equal(t, 1, client.callCount())
	require.NotNil(t, result.Recovery)
	assert.Equal(t, "open_settings", result.Recovery.RecoveryAction)
	assert.NotEmpty(t, result.Recovery.Suggestions)
}

func TestConfirmationFlow(t *testing.T) {
	client := &scriptedClient{response: `{"intent": "drill_request", "confidence": 0.6}`}
	e := newTestEngine(t, client)

	first := e.HandleInput(context.Background(), "maybe some practice?")
	require.Equal(t, nav.ActionRequestConfirmation, first.Action.Kind)
	assert.Contains(t, first.Action.Message, "practice drill")
	assert.Zero(t, e.Executor().Depth())

	accepted := e.ResolveConfirmation(context.Background(), true)
	require.Equal(t, nav.ActionNavigated, accepted.Action.Kind)
	assert.Equal(t, "drill_library", accepted.Action.Destination.Screen)

	// The confirmation was consumed.
	again := e.ResolveConfirmation(context.Background(), true)
	assert.Equal(t, nav.ActionShowResponse, again.Action.Kind)
}

func TestConfirmationDeclined(t *testing.T) {
	client := &scriptedClient{response: `{"intent": "drill_request", "confidence": 0.6}`}
	e := newTestEngine(t, client)

	e.HandleInput(context.Background(), "maybe some practice?")
	declined := e.ResolveConfirmation(context.Background(), false)
	assert.Equal(t, nav.ActionShowResponse, declined.Action.Kind)
	assert.Zero(t, e.Executor().Depth())
}

func TestPendingConfirmationConcurrentAccess(t *testing.T) {
	client := &scriptedClient{response: `{"intent": "drill_request", "confidence": 0.6}`}
	e := newTestEngine(t, client)

	// Interleave turns that park a confirmation with turns that consume it.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			e.HandleInput(context.Background(), "maybe some practice?")
		}()
		go func() {
			defer wg.Done()
			e.ResolveConfirmation(context.Background(), true)
		}()
	}
	wg.Wait()

	// Whatever interleaving happened, a final accept either routes the
	// parked intent or reports nothing pending.
	result := e.ResolveConfirmation(context.Background(), true)
	assert.Contains(t, []nav.ActionKind{nav.ActionNavigated, nav.ActionShowResponse}, result.Action.Kind)
}

func TestSelectSuggestionRoutesDirectly(t *testing.T) {
	e := newTestEngine(t, perception.NewOfflineClient())

	result := e.SelectSuggestion(context.Background(), types.IntentStatsLookup)
	require.Equal(t, nav.ActionNavigated, result.Action.Kind)
	assert.Equal(t, "stats", result.Action.Destination.Screen)
}

func TestTurnsAreRecorded(t *testing.T) {
	e := newTestEngine(t, perception.NewOfflineClient())
	e.State().Set(types.PrereqBagConfigured, true)

	e.HandleInput(context.Background(), "My 7i feels long today")

	snapshot := e.Store().Snapshot()
	require.Len(t, snapshot.History, 2)
	assert.Equal(t, session.RoleUser, snapshot.History[0].Role)
	assert.Equal(t, "My 7i feels long today", snapshot.History[0].Content)
	assert.Equal(t, session.RoleAssistant, snapshot.History[1].Role)
	assert.NotEmpty(t, snapshot.History[1].Content)
}

// scriptedClient returns a fixed response.
type scriptedClient struct {
	response string
}

func (c *scriptedClient) Classify(context.Context, string, string) (string, error) {
	return c.response, nil
}

func (c *scriptedClient) Name() string { return "scripted" }
