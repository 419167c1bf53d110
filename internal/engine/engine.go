// Package engine wires the full request pipeline: normalize, classify,
// route, navigate, with retry and circuit breaking wrapped around the one
// probabilistic step. Everything downstream of classification is
// deterministic table lookup, so a given classification always lands on the
// same screen.
package engine

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"fairway/internal/analytics"
	"fairway/internal/logging"
	"fairway/internal/nav"
	"fairway/internal/perception"
	"fairway/internal/recovery"
	"fairway/internal/routing"
	"fairway/internal/session"
	"fairway/internal/types"
)

// TurnResult is everything one user turn produced. Action is always set;
// Recovery is set only when the turn ended in a surfaced fault.
type TurnResult struct {
	Classification types.ClassificationResult
	Routing        types.RoutingResult
	Action         nav.NavigationAction
	Recovery       *recovery.Decision
}

// Engine is the conversational front door. One engine serves one session.
type Engine struct {
	classifier *perception.Classifier
	orch       *routing.Orchestrator
	executor   *nav.Executor
	store      *session.ContextStore
	retries    *recovery.RetryPolicy
	patterns   *recovery.PatternDetector
	recorder   *analytics.Recorder
	state      *PrereqState

	// pending holds a confirm-band classification awaiting the user's
	// yes/no. Overwritten by the next turn.
	pendingMu sync.Mutex
	pending   *types.ClassificationResult
}

// Options configures engine construction.
type Options struct {
	SessionID string
	Store     *session.ContextStore
	Recorder  *analytics.Recorder
	Retries   *recovery.RetryPolicy
	// Checker overrides the default session-backed prerequisite checker.
	Checker routing.PrerequisiteChecker
	// Classifier options are passed through (thresholds, shared normalizer).
	Classifier []perception.ClassifierOption
}

// New builds an engine around a classification client. The client is wrapped
// in a circuit breaker; repeated failures trip it and surface as network
// unavailability instead of repeated slow timeouts.
func New(client perception.LLMClient, opts Options) *Engine {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	store := opts.Store
	if store == nil {
		store = session.NewContextStore(sessionID)
	}

	retries := opts.Retries
	if retries == nil {
		retries = recovery.NewRetryPolicy()
	}

	state := NewPrereqState(store)
	checker := opts.Checker
	if checker == nil {
		checker = state
	}

	guarded := &breakerClient{
		inner:   client,
		breaker: recovery.NewClassifyBreaker(),
	}

	return &Engine{
		classifier: perception.NewClassifier(guarded, opts.Classifier...),
		orch:       routing.NewOrchestrator(checker),
		executor:   nav.NewExecutor(),
		store:      store,
		retries:    retries,
		patterns:   recovery.NewPatternDetector(),
		recorder:   opts.Recorder,
		state:      state,
	}
}

// HandleInput processes one user utterance end to end. Auto-retryable
// faults are retried in place with backoff; everything else surfaces as a
// recovery decision with user-facing suggestions.
func (e *Engine) HandleInput(ctx context.Context, input string) TurnResult {
	log := logging.Get(logging.CategoryEngine)
	opID := uuid.NewString()
	defer e.retries.Reset(opID)

	e.store.AddTurn(session.Turn{Role: session.RoleUser, Content: input, Timestamp: time.Now()})

	var classification types.ClassificationResult
	for {
		start := time.Now()
		classification = e.classifier.Classify(ctx, input, e.store.Snapshot())
		latency := time.Since(start)

		if classification.Decision != types.DecisionError {
			e.emitClassification(classification, latency)
			break
		}

		fault := recovery.Classify(classification.Fault)
		e.patterns.Record(fault)
		e.recorder.ErrorOccurred(string(fault.Kind))

		decision := e.retries.Handle(opID, classification.Fault)
		if !decision.ShouldAutoRetry {
			log.Warn("classification failed without retry budget: %s", fault.Kind)
			return e.finishFaulted(fault, &decision)
		}

		log.Info("retrying classification in %s (attempt %d)", decision.Backoff, decision.Attempts)
		if !sleepCtx(ctx, decision.Backoff) {
			canceled := recovery.Classify(ctx.Err())
			return e.finishFaulted(canceled, &decision)
		}
	}

	return e.finish(ctx, classification)
}

// ResolveConfirmation answers a pending confirm-band question. Accepting
// routes the stored intent; declining produces a clarification-style
// response. Without a pending confirmation it returns a plain response.
func (e *Engine) ResolveConfirmation(ctx context.Context, accepted bool) TurnResult {
	e.pendingMu.Lock()
	pending := e.pending
	e.pending = nil
	e.pendingMu.Unlock()

	if pending == nil || pending.Intent == nil {
		return e.respond("Nothing to confirm right now. What would you like to do?")
	}
	if !accepted {
		return e.respond("Okay. Tell me in your own words what you'd like to do.")
	}
	return e.routeIntent(ctx, pending.Intent.Intent, pending.Intent.Entities)
}

// SelectSuggestion routes a clarification suggestion the user picked. The
// pick is treated as certain; no second classification round trip happens.
func (e *Engine) SelectSuggestion(ctx context.Context, intent types.Intent) TurnResult {
	return e.routeIntent(ctx, intent, types.Entities{})
}

// State exposes the prerequisite flags for app wiring.
func (e *Engine) State() *PrereqState { return e.state }

// Store exposes the session context store.
func (e *Engine) Store() *session.ContextStore { return e.store }

// Executor exposes the navigation stack.
func (e *Engine) Executor() *nav.Executor { return e.executor }

// Patterns returns recurring failure patterns observed this session.
func (e *Engine) Patterns() []recovery.Pattern { return e.patterns.Patterns() }

// routeIntent short-circuits classification for an intent the user chose
// explicitly.
func (e *Engine) routeIntent(ctx context.Context, intent types.Intent, entities types.Entities) TurnResult {
	parsed := types.ParsedIntent{Intent: intent, Confidence: 1.0, Entities: entities}
	classification := types.ClassificationResult{Decision: types.DecisionRoute, Intent: &parsed}
	if target, ok := routing.DefaultTarget(intent); ok {
		attachKnownEntities(&target, entities)
		classification.Target = &target
	}
	e.emitClassification(classification, 0)
	return e.finish(ctx, classification)
}

// finish routes and executes a non-error classification, recording the
// assistant side of the turn.
func (e *Engine) finish(ctx context.Context, classification types.ClassificationResult) TurnResult {
	e.pendingMu.Lock()
	if classification.Decision == types.DecisionConfirm {
		e.pending = &classification
	} else {
		e.pending = nil
	}
	e.pendingMu.Unlock()

	routed := e.orch.Route(ctx, classification)
	action := e.executor.Execute(routed)
	e.recorder.ActionTaken(string(action.Kind))
	e.recordAssistantTurn(classification, action)

	return TurnResult{Classification: classification, Routing: routed, Action: action}
}

func (e *Engine) finishFaulted(fault *recovery.Fault, decision *recovery.Decision) TurnResult {
	message := fault.UserMessage()
	e.store.AddTurn(session.Turn{Role: session.RoleAssistant, Content: message, Timestamp: time.Now()})
	e.recorder.ActionTaken("error_shown")

	return TurnResult{
		Classification: types.ClassificationResult{Decision: types.DecisionError, Fault: fault},
		Routing:        types.RoutingResult{Outcome: types.OutcomeNoNavigation, Response: message},
		Action:         nav.NavigationAction{Kind: nav.ActionShowError, Response: message},
		Recovery:       decision,
	}
}

func (e *Engine) respond(message string) TurnResult {
	e.store.AddTurn(session.Turn{Role: session.RoleAssistant, Content: message, Timestamp: time.Now()})
	routed := types.RoutingResult{Outcome: types.OutcomeNoNavigation, Response: message}
	return TurnResult{
		Classification: types.ClassificationResult{Decision: types.DecisionClarify},
		Routing:        routed,
		Action:         nav.NavigationAction{Kind: nav.ActionShowResponse, Response: message},
	}
}

func (e *Engine) recordAssistantTurn(classification types.ClassificationResult, action nav.NavigationAction) {
	turn := session.Turn{Role: session.RoleAssistant, Timestamp: time.Now()}
	if classification.Intent != nil {
		turn.Intent = classification.Intent.Intent
	}
	switch action.Kind {
	case nav.ActionNavigated:
		turn.Content = "Opened " + action.Destination.Title
	case nav.ActionShowResponse:
		turn.Content = action.Response
	default:
		turn.Content = action.Message
	}
	if turn.Content == "" && classification.Clarification != nil {
		turn.Content = classification.Clarification.Message
	}
	e.store.AddTurn(turn)
}

func (e *Engine) emitClassification(classification types.ClassificationResult, latency time.Duration) {
	intent := types.IntentUnknown
	confidence := 0.0
	if classification.Intent != nil {
		intent = classification.Intent.Intent
		confidence = classification.Intent.Confidence
	}
	e.recorder.ClassificationOutcome(intent, confidence, classification.Decision, latency)
}

func attachKnownEntities(target *types.RoutingTarget, e types.Entities) {
	if e.Club != "" {
		target.Parameters["club"] = e.Club
	}
	if e.HoleNumber > 0 {
		target.Parameters["hole"] = strconv.Itoa(e.HoleNumber)
	}
}

// sleepCtx waits for d or context cancellation, reporting whether the full
// wait elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// breakerClient guards an LLM client with a circuit breaker. An open
// circuit fails fast; recovery.Classify maps that onto network
// unavailability.
type breakerClient struct {
	inner   perception.LLMClient
	breaker *gobreaker.CircuitBreaker
}

func (c *breakerClient) Classify(ctx context.Context, text, contextFragment string) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.inner.Classify(ctx, text, contextFragment)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *breakerClient) Name() string { return c.inner.Name() }
