package normalize

import (
	"strings"
	"unicode"
)

// commonEnglish covers function words plus the golf vocabulary this app
// actually sees. One hit is enough for longer inputs.
var commonEnglish = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "i": {}, "my": {}, "me": {}, "is": {},
	"it": {}, "to": {}, "of": {}, "in": {}, "on": {}, "for": {}, "and": {},
	"what": {}, "how": {}, "was": {}, "do": {}, "did": {}, "can": {},
	"should": {}, "feels": {}, "feel": {}, "today": {}, "that": {},
	"club": {}, "iron": {}, "wedge": {}, "driver": {}, "putter": {},
	"shot": {}, "hole": {}, "round": {}, "score": {}, "yards": {},
	"swing": {}, "green": {}, "tee": {}, "par": {}, "birdie": {},
	"bogey": {}, "fairway": {}, "wind": {}, "long": {}, "short": {},
}

// IsEnglish is a lightweight heuristic gate. It performs no normalization
// and is intentionally permissive: very short inputs pass (too little
// signal), and a single common word or club shorthand is enough. Inputs
// dominated by non-Latin script fail.
func IsEnglish(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}

	letters, latin := 0, 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
			if r < 0x250 {
				latin++
			}
		}
	}
	if letters == 0 {
		return true // numbers and symbols carry no language signal
	}
	if latin*2 < letters {
		return false
	}

	words := strings.FieldsFunc(strings.ToLower(trimmed), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if len(words) <= 2 {
		return true
	}

	for _, w := range words {
		if _, ok := commonEnglish[w]; ok {
			return true
		}
		if reIronShorthand.MatchString(w) || reWoodShorthand.MatchString(w) {
			return true
		}
	}
	return false
}
