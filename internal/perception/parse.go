package perception

import (
	"encoding/json"
	"strconv"
	"strings"

	"fairway/internal/types"
)

// flexNumber decodes JSON numbers that sloppy responses sometimes quote
// ("confidence": "0.85"). Anything non-numeric decodes to empty.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" {
		s = ""
	}
	*n = flexNumber(s)
	return nil
}

func (n flexNumber) float() float64 {
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0
	}
	return f
}

func (n flexNumber) int() int {
	return int(n.float())
}

// rawResponse mirrors the wire schema the service is asked to produce.
// Every field is optional at decode time; strictness is applied afterwards
// so a sloppy-but-parseable response degrades instead of crashing.
type rawResponse struct {
	Intent     string      `json:"intent"`
	Confidence flexNumber  `json:"confidence"`
	Entities   rawEntities `json:"entities"`
	UserGoal   string      `json:"user_goal"`
	AltGoal    string      `json:"userGoal"` // some prompt revisions camelCase this
}

// rawEntities tolerates both snake_case and camelCase keys and both string
// and numeric encodings of the numeric fields.
type rawEntities struct {
	Club            string     `json:"club"`
	Yardage         flexNumber `json:"yardage"`
	Lie             string     `json:"lie"`
	Wind            string     `json:"wind"`
	Fatigue         flexNumber `json:"fatigue"`
	Pain            string     `json:"pain"`
	ScoreContext    string     `json:"score_context"`
	ScoreContextAlt string     `json:"scoreContext"`
	HoleNumber      flexNumber `json:"hole_number"`
	HoleNumberAlt   flexNumber `json:"holeNumber"`
}

// ParseResponse decodes the raw service response into a ParsedIntent.
//
// Degradation rules: malformed JSON, a missing intent field or an unknown
// intent label all come back as (unknown, confidence 0) with ok=false —
// the caller routes that to clarification, never to an error. Only the
// transport layer produces errors.
func ParseResponse(response string) (types.ParsedIntent, bool) {
	unknown := types.ParsedIntent{Intent: types.IntentUnknown, Confidence: 0}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		return unknown, false
	}

	var raw rawResponse
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return unknown, false
	}
	if raw.Intent == "" {
		return unknown, false
	}

	intent, ok := types.ParseIntent(raw.Intent)
	if !ok {
		return unknown, false
	}

	goal := raw.UserGoal
	if goal == "" {
		goal = raw.AltGoal
	}

	return types.ParsedIntent{
		Intent:     intent,
		Confidence: types.ClampConfidence(raw.Confidence.float()),
		Entities:   raw.Entities.toEntities(),
		UserGoal:   goal,
	}, true
}

func (r rawEntities) toEntities() types.Entities {
	scoreContext := r.ScoreContext
	if scoreContext == "" {
		scoreContext = r.ScoreContextAlt
	}
	hole := r.HoleNumber.int()
	if hole == 0 {
		hole = r.HoleNumberAlt.int()
	}

	e := types.Entities{
		Club:         strings.TrimSpace(r.Club),
		Yardage:      r.Yardage.int(),
		Lie:          strings.TrimSpace(r.Lie),
		Wind:         strings.TrimSpace(r.Wind),
		Fatigue:      r.Fatigue.int(),
		Pain:         strings.TrimSpace(r.Pain),
		ScoreContext: strings.TrimSpace(scoreContext),
		HoleNumber:   hole,
	}
	return e.Sanitize()
}

// extractJSON finds the first balanced JSON object in a response that may be
// wrapped in markdown fences or prose. String contents are skipped so braces
// inside values cannot unbalance the scan.
func extractJSON(response string) string {
	start := strings.Index(response, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		c := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return ""
}
