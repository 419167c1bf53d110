package nav

import (
	"sync"

	"fairway/internal/logging"
	"fairway/internal/types"
)

// ActionKind discriminates NavigationAction.
type ActionKind string

const (
	ActionNavigated           ActionKind = "navigated"
	ActionShowResponse        ActionKind = "show_response"
	ActionShowError           ActionKind = "show_error"
	ActionPrerequisitePrompt  ActionKind = "prerequisite_prompt"
	ActionRequestConfirmation ActionKind = "request_confirmation"
)

// NavigationAction is what the UI layer renders after a routed turn.
type NavigationAction struct {
	Kind        ActionKind
	Destination *Destination
	Response    string
	Message     string
	Missing     []types.Prerequisite
}

// Executor owns the navigation stack. The stack only mutates on a successful
// navigate; every other outcome, including a destination that fails to
// build, leaves it untouched.
type Executor struct {
	mu    sync.Mutex
	stack []*Destination
}

// NewExecutor creates an executor with an empty stack.
func NewExecutor() *Executor {
	return &Executor{}
}

// Execute maps a routing result onto a navigation action, pushing onto the
// stack only for the navigate outcome.
func (e *Executor) Execute(result types.RoutingResult) NavigationAction {
	log := logging.Get(logging.CategoryNav)

	switch result.Outcome {
	case types.OutcomeNavigate:
		dest := Build(result.Target)
		if dest == nil {
			log.Warn("navigate outcome with unbuildable target, staying put")
			return NavigationAction{
				Kind:     ActionShowError,
				Response: "I couldn't open that screen. Please try again.",
			}
		}
		e.push(dest)
		log.Info("navigated to %s/%s (depth %d)", dest.Module, dest.Screen, e.Depth())
		return NavigationAction{Kind: ActionNavigated, Destination: dest}

	case types.OutcomeNoNavigation:
		return NavigationAction{Kind: ActionShowResponse, Response: result.Response}

	case types.OutcomePrerequisiteMissing:
		return NavigationAction{
			Kind:    ActionPrerequisitePrompt,
			Message: result.Message,
			Missing: result.Missing,
		}

	case types.OutcomeConfirmationRequired:
		return NavigationAction{Kind: ActionRequestConfirmation, Message: result.Message}

	default:
		return NavigationAction{
			Kind:     ActionShowError,
			Response: "Sorry, something went wrong.",
		}
	}
}

func (e *Executor) push(dest *Destination) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stack = append(e.stack, dest)
}

// Current returns the top of the stack, or nil when it is empty.
func (e *Executor) Current() *Destination {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

// NavigateBack pops the current screen. Returns the newly exposed screen, or
// nil when the stack is empty afterwards or was empty already.
func (e *Executor) NavigateBack() *Destination {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stack) == 0 {
		return nil
	}
	e.stack = e.stack[:len(e.stack)-1]
	if len(e.stack) == 0 {
		return nil
	}
	return e.stack[len(e.stack)-1]
}

// Replace swaps the current top for dest without growing the stack. On an
// empty stack it behaves like a push.
func (e *Executor) Replace(dest *Destination) {
	if dest == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stack) == 0 {
		e.stack = append(e.stack, dest)
		return
	}
	e.stack[len(e.stack)-1] = dest
}

// PopToRoot drops everything above the first screen.
func (e *Executor) PopToRoot() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.stack) > 1 {
		e.stack = e.stack[:1]
	}
}

// Depth returns the stack depth.
func (e *Executor) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.stack)
}
