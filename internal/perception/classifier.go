package perception

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"fairway/internal/clarify"
	"fairway/internal/logging"
	"fairway/internal/normalize"
	"fairway/internal/routing"
	"fairway/internal/session"
	"fairway/internal/types"
)

// Confidence band boundaries. Both are inclusive at the low end: 0.75 routes
// and 0.50 confirms.
const (
	DefaultRouteThreshold   = 0.75
	DefaultConfirmThreshold = 0.50
)

// Classifier orchestrates one classification request: normalize, build the
// prompt, await the external call, parse, then apply the tiered decision.
// It holds no per-request state; concurrent Classify calls are independent.
type Classifier struct {
	client    LLMClient
	norm      *normalize.Normalizer
	clarifier *clarify.Generator

	routeThreshold   float64
	confirmThreshold float64
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithThresholds overrides the confidence band boundaries.
func WithThresholds(route, confirm float64) ClassifierOption {
	return func(c *Classifier) {
		if route > 0 {
			c.routeThreshold = route
		}
		if confirm > 0 {
			c.confirmThreshold = confirm
		}
	}
}

// WithNormalizer supplies a shared normalizer (lexicon hot reload).
func WithNormalizer(n *normalize.Normalizer) ClassifierOption {
	return func(c *Classifier) { c.norm = n }
}

// NewClassifier creates a classifier over the given client.
func NewClassifier(client LLMClient, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		client:           client,
		norm:             normalize.New(),
		clarifier:        clarify.NewGenerator(),
		routeThreshold:   DefaultRouteThreshold,
		confirmThreshold: DefaultConfirmThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs the full decision for one utterance. snapshot may be the
// zero value when no session exists. The only failure mode is a fault from
// the external call itself; every parse or mapping problem degrades to the
// clarification path.
func (c *Classifier) Classify(ctx context.Context, input string, snapshot session.Snapshot) types.ClassificationResult {
	log := logging.Get(logging.CategoryPerception)

	norm := c.norm.Normalize(input)
	if norm.WasModified {
		log.Debug("normalized %q -> %q (%d modifications)", input, norm.Text, len(norm.Modifications))
	}

	response, err := c.client.Classify(ctx, norm.Text, snapshot.Serialize())
	if err != nil {
		log.Warn("classification call failed: %v", err)
		return types.ClassificationResult{Decision: types.DecisionError, Fault: err}
	}

	parsed, ok := ParseResponse(response)
	if !ok {
		log.Info("unparseable or unknown-intent response, degrading to clarification")
	}

	return c.decide(parsed, norm.Text, snapshot)
}

// decide applies the three-tier confidence table. Pure given its inputs.
func (c *Classifier) decide(parsed types.ParsedIntent, normalizedInput string, snapshot session.Snapshot) types.ClassificationResult {
	switch {
	case parsed.Intent != types.IntentUnknown && parsed.Confidence >= c.routeThreshold:
		if missing := firstMissingEntity(parsed); missing != "" {
			return types.ClassificationResult{
				Decision: types.DecisionConfirm,
				Intent:   &parsed,
				Message: fmt.Sprintf("Did you want to %s? I didn't catch the %s.",
					strings.ToLower(parsed.Intent.Label()), entityDisplayName(missing)),
			}
		}
		target, ok := routing.DefaultTarget(parsed.Intent)
		if !ok {
			// No-navigation intents carry no target; the orchestrator
			// answers them in place.
			return types.ClassificationResult{Decision: types.DecisionRoute, Intent: &parsed}
		}
		attachEntities(&target, parsed.Entities)
		return types.ClassificationResult{Decision: types.DecisionRoute, Intent: &parsed, Target: &target}

	case parsed.Intent != types.IntentUnknown && parsed.Confidence >= c.confirmThreshold:
		return types.ClassificationResult{
			Decision: types.DecisionConfirm,
			Intent:   &parsed,
			Message:  fmt.Sprintf("Did you want to %s?", strings.ToLower(parsed.Intent.Label())),
		}

	default:
		var hint *types.ParsedIntent
		if parsed.Intent != types.IntentUnknown {
			hint = &parsed
		}
		clarification := c.clarifier.Generate(normalizedInput, hint, snapshot)
		return types.ClassificationResult{
			Decision:      types.DecisionClarify,
			Intent:        hint,
			Clarification: &clarification,
		}
	}
}

// firstMissingEntity returns the first required entity absent from the
// parse, in table order, or "".
func firstMissingEntity(parsed types.ParsedIntent) string {
	for _, name := range routing.RequiredEntities(parsed.Intent) {
		if !parsed.Entities.Has(name) {
			return name
		}
	}
	return ""
}

func entityDisplayName(name string) string {
	switch name {
	case "hole_number":
		return "hole number"
	default:
		return strings.ReplaceAll(name, "_", " ")
	}
}

// attachEntities copies extracted entities into the target's parameter map
// using the resolver's parameter names.
func attachEntities(target *types.RoutingTarget, e types.Entities) {
	if e.Club != "" {
		target.Parameters["club"] = e.Club
	}
	if e.Yardage > 0 {
		target.Parameters["yardage"] = strconv.Itoa(e.Yardage)
	}
	if e.Lie != "" {
		target.Parameters["lie"] = e.Lie
	}
	if e.Wind != "" {
		target.Parameters["wind"] = e.Wind
	}
	if e.HoleNumber > 0 {
		target.Parameters["hole"] = strconv.Itoa(e.HoleNumber)
	}
}
