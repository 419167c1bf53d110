package types

// Entities holds everything the classifier extracted from the user's phrase.
// All fields are optional; absence means "not extracted". Out-of-range
// numeric values are dropped at construction time, never rejected with an
// error — a bad hole number is simply treated as not extracted.
type Entities struct {
	Club         string `json:"club,omitempty"`
	Yardage      int    `json:"yardage,omitempty"`
	Lie          string `json:"lie,omitempty"`
	Wind         string `json:"wind,omitempty"`
	Fatigue      int    `json:"fatigue,omitempty"` // 1-10, clamped
	Pain         string `json:"pain,omitempty"`
	ScoreContext string `json:"score_context,omitempty"`
	HoleNumber   int    `json:"hole_number,omitempty"` // 1-18, else dropped
}

// Sanitize enforces the numeric ranges: fatigue clamps into [1,10], hole
// numbers outside [1,18] are dropped, negative yardages are dropped.
func (e Entities) Sanitize() Entities {
	if e.Fatigue != 0 {
		if e.Fatigue < 1 {
			e.Fatigue = 1
		} else if e.Fatigue > 10 {
			e.Fatigue = 10
		}
	}
	if e.HoleNumber < 1 || e.HoleNumber > 18 {
		e.HoleNumber = 0
	}
	if e.Yardage < 0 {
		e.Yardage = 0
	}
	return e
}

// Has reports whether a named entity is present. Names match the static
// required-entity table in the routing package.
func (e Entities) Has(name string) bool {
	switch name {
	case "club":
		return e.Club != ""
	case "yardage":
		return e.Yardage > 0
	case "lie":
		return e.Lie != ""
	case "wind":
		return e.Wind != ""
	case "fatigue":
		return e.Fatigue > 0
	case "pain":
		return e.Pain != ""
	case "score_context":
		return e.ScoreContext != ""
	case "hole_number":
		return e.HoleNumber > 0
	default:
		return false
	}
}

// ParsedIntent is the classifier's interpretation of one utterance.
// Immutable once constructed.
type ParsedIntent struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"` // clamped to [0,1]
	Entities   Entities `json:"entities"`
	UserGoal   string   `json:"user_goal,omitempty"`
}

// ClampConfidence forces the confidence into [0,1]. NaN collapses to 0.
func ClampConfidence(c float64) float64 {
	if c != c || c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
