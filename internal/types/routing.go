package types

// Module is the app area a routing target lives in.
type Module string

const (
	ModuleCaddy    Module = "caddy"
	ModuleCoach    Module = "coach"
	ModuleRecovery Module = "recovery"
	ModuleSettings Module = "settings"
)

// RoutingTarget names a screen plus its string parameters. Parameter order
// is irrelevant; the map is treated as unordered everywhere.
type RoutingTarget struct {
	Module     Module            `json:"module"`
	Screen     string            `json:"screen"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Prerequisite is a boolean condition that must hold before a navigation
// target is reachable. The set is closed.
type Prerequisite string

const (
	PrereqBagConfigured  Prerequisite = "bag_configured"
	PrereqRoundActive    Prerequisite = "round_active"
	PrereqRecoveryData   Prerequisite = "recovery_data"
	PrereqCourseSelected Prerequisite = "course_selected"
)

// Describe returns the user-facing name for a prerequisite prompt.
func (p Prerequisite) Describe() string {
	switch p {
	case PrereqBagConfigured:
		return "your bag set up"
	case PrereqRoundActive:
		return "an active round"
	case PrereqRecoveryData:
		return "recovery data recorded"
	case PrereqCourseSelected:
		return "a course selected"
	default:
		return string(p)
	}
}

// Decision is the classifier's confidence-tiered verdict.
type Decision string

const (
	DecisionRoute   Decision = "route"
	DecisionConfirm Decision = "confirm"
	DecisionClarify Decision = "clarify"
	DecisionError   Decision = "error"
)

// IntentSuggestion is one ranked clarification candidate.
type IntentSuggestion struct {
	Intent Intent `json:"intent"`
	Label  string `json:"label"`
}

// Clarification is the generator's output: a question plus 1..3 suggestions
// with unique labels.
type Clarification struct {
	Message     string             `json:"message"`
	Suggestions []IntentSuggestion `json:"suggestions"`
}

// ClassificationResult is the classifier's output variant. Exactly one of
// the optional fields is meaningful per decision:
//
//	route   -> Intent + Target
//	confirm -> Intent + Message
//	clarify -> Clarification
//	error   -> Fault (a typed fault from the external call)
type ClassificationResult struct {
	Decision      Decision       `json:"decision"`
	Intent        *ParsedIntent  `json:"intent,omitempty"`
	Target        *RoutingTarget `json:"target,omitempty"`
	Message       string         `json:"message,omitempty"`
	Clarification *Clarification `json:"clarification,omitempty"`
	Fault         error          `json:"-"`
}

// RoutingOutcome discriminates RoutingResult.
type RoutingOutcome string

const (
	OutcomeNavigate             RoutingOutcome = "navigate"
	OutcomeNoNavigation         RoutingOutcome = "no_navigation"
	OutcomePrerequisiteMissing  RoutingOutcome = "prerequisite_missing"
	OutcomeConfirmationRequired RoutingOutcome = "confirmation_required"
)

// RoutingResult is the orchestrator's output variant.
type RoutingResult struct {
	Outcome  RoutingOutcome `json:"outcome"`
	Intent   *ParsedIntent  `json:"intent,omitempty"`
	Target   *RoutingTarget `json:"target,omitempty"`
	Response string         `json:"response,omitempty"`
	Missing  []Prerequisite `json:"missing,omitempty"`
	Message  string         `json:"message,omitempty"`
}
