package routing

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"fairway/internal/logging"
	"fairway/internal/types"
)

// PrerequisiteChecker answers whether a single gate holds. Implementations
// may hit storage or the session store; checks for one intent run
// concurrently, so implementations must be safe for parallel calls.
type PrerequisiteChecker interface {
	IsSatisfied(ctx context.Context, prereq types.Prerequisite) (bool, error)
}

// PrerequisiteFunc adapts a function to PrerequisiteChecker.
type PrerequisiteFunc func(ctx context.Context, prereq types.Prerequisite) (bool, error)

// IsSatisfied calls f.
func (f PrerequisiteFunc) IsSatisfied(ctx context.Context, prereq types.Prerequisite) (bool, error) {
	return f(ctx, prereq)
}

// Orchestrator turns a classification result into a routing result. It owns
// no mutable state; given the same classification and the same checker
// answers it always produces the same result.
type Orchestrator struct {
	checker PrerequisiteChecker
}

// NewOrchestrator creates an orchestrator over the given checker. A nil
// checker treats every prerequisite as satisfied.
func NewOrchestrator(checker PrerequisiteChecker) *Orchestrator {
	return &Orchestrator{checker: checker}
}

// Route maps a classification onto the four routing outcomes:
//
//	route + no-navigation intent -> answered in place
//	route + unmet prerequisites  -> prerequisite prompt listing every gap
//	route + all gates hold       -> navigate
//	confirm                      -> confirmation required
//	clarify                      -> clarification question, no navigation
//	error                        -> apology, no navigation
func (o *Orchestrator) Route(ctx context.Context, classification types.ClassificationResult) types.RoutingResult {
	log := logging.Get(logging.CategoryRouting)

	switch classification.Decision {
	case types.DecisionRoute:
		intent := classification.Intent.Intent
		if response, ok := NoNavigationResponse(intent); ok {
			log.Debug("intent %s answered in place", intent)
			return types.RoutingResult{
				Outcome:  types.OutcomeNoNavigation,
				Intent:   classification.Intent,
				Response: response,
			}
		}

		missing, err := o.uncheckedPrerequisites(ctx, intent)
		if err != nil {
			log.Warn("prerequisite check failed for %s: %v", intent, err)
			return types.RoutingResult{
				Outcome:  types.OutcomeNoNavigation,
				Intent:   classification.Intent,
				Response: "I couldn't check whether you're set up for that. Please try again.",
			}
		}
		if len(missing) > 0 {
			log.Info("intent %s blocked on %d prerequisite(s)", intent, len(missing))
			return types.RoutingResult{
				Outcome: types.OutcomePrerequisiteMissing,
				Intent:  classification.Intent,
				Missing: missing,
				Message: prerequisitePrompt(missing),
			}
		}

		target := classification.Target
		if target == nil {
			// Callers constructing route decisions by hand may omit the
			// target; fall back to the static table.
			if t, ok := DefaultTarget(intent); ok {
				target = &t
			}
		}
		if target != nil {
			log.Debug("intent %s routed to %s/%s", intent, target.Module, target.Screen)
		}
		return types.RoutingResult{
			Outcome: types.OutcomeNavigate,
			Intent:  classification.Intent,
			Target:  target,
		}

	case types.DecisionConfirm:
		return types.RoutingResult{
			Outcome: types.OutcomeConfirmationRequired,
			Intent:  classification.Intent,
			Message: classification.Message,
		}

	case types.DecisionClarify:
		message := ""
		if classification.Clarification != nil {
			message = classification.Clarification.Message
		}
		return types.RoutingResult{
			Outcome:  types.OutcomeNoNavigation,
			Intent:   classification.Intent,
			Response: message,
		}

	default:
		return types.RoutingResult{
			Outcome:  types.OutcomeNoNavigation,
			Response: "Sorry, I couldn't process that. Please try again.",
		}
	}
}

// uncheckedPrerequisites runs every gate for the intent concurrently and
// returns the unmet ones in declaration order. All gates are always checked
// so the prompt can name every gap at once.
func (o *Orchestrator) uncheckedPrerequisites(ctx context.Context, intent types.Intent) ([]types.Prerequisite, error) {
	prereqs := PrerequisitesFor(intent)
	if len(prereqs) == 0 || o.checker == nil {
		return nil, nil
	}

	satisfied := make([]bool, len(prereqs))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range prereqs {
		g.Go(func() error {
			ok, err := o.checker.IsSatisfied(gctx, p)
			if err != nil {
				return fmt.Errorf("checking %s: %w", p, err)
			}
			satisfied[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var missing []types.Prerequisite
	for i, p := range prereqs {
		if !satisfied[i] {
			missing = append(missing, p)
		}
	}
	return missing, nil
}

// prerequisitePrompt names every unmet gate in one sentence.
func prerequisitePrompt(missing []types.Prerequisite) string {
	parts := make([]string, len(missing))
	for i, p := range missing {
		parts[i] = p.Describe()
	}
	return "Before I can do that, you'll need " + joinNaturally(parts) + "."
}

func joinNaturally(parts []string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}
