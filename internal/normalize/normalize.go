// Package normalize implements the input normalization pipeline: spoken
// number canonicalization, golf slang expansion, profanity masking and
// whitespace cleanup. Normalization is pure, total and idempotent —
// normalizing already-normalized text reports no modifications.
//
// Pipeline order is fixed and load-bearing: composite spoken-number phrases
// ("one fifty") must resolve before simple number words so "one" is not
// rewritten out from under "one fifty".
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

// Kind tags one entry in the modification log.
type Kind string

const (
	KindSlang      Kind = "slang"
	KindNumber     Kind = "number"
	KindProfanity  Kind = "profanity"
	KindWhitespace Kind = "whitespace"
)

// Modification records a single substitution performed by the pipeline.
type Modification struct {
	Kind        Kind   `json:"kind"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
}

// Result is the outcome of normalizing one input string.
type Result struct {
	Text          string         `json:"normalized_text"`
	WasModified   bool           `json:"was_modified"`
	Modifications []Modification `json:"modifications,omitempty"`
}

// profanityMask replaces each matched token. Fixed width regardless of the
// original token length. Asterisks are deliberately excluded from the
// punctuation-collapse class so masks survive re-normalization.
const profanityMask = "****"

var (
	unitWords = map[string]int{
		"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
		"six": 6, "seven": 7, "eight": 8, "nine": 9,
	}
	tensWords = map[string]int{
		"ten": 10, "twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
		"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	}
	teenWords = map[string]int{
		"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
		"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18,
		"nineteen": 19,
	}

	unitAlt = "one|two|three|four|five|six|seven|eight|nine"
	tensAlt = "ten|twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety"
	// "ten five" is not an idiom; composites start at twenty.
	tensCompAlt = "twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety"

	// "one hundred fifty", "two hundred" — optional "and". Internal gaps
	// match whitespace runs because this stage runs before collapse.
	reHundredTens = regexp.MustCompile(`(?i)\b(` + unitAlt + `)\s+hundred(?:\s+and)?(?:\s+(` + tensAlt + `))?(?:\s+(` + unitAlt + `))?\b`)
	// Yardage idiom: "one fifty" = 150.
	reUnitTens = regexp.MustCompile(`(?i)\b(` + unitAlt + `)\s+(` + tensAlt + `)\b`)
	// Plain composite: "forty five" = 45.
	reTensUnit = regexp.MustCompile(`(?i)\b(` + tensCompAlt + `)\s+(` + unitAlt + `)\b`)
	// Simple words last.
	reSimpleNumber = regexp.MustCompile(`(?i)\b(` + unitAlt + `|` + tensAlt + `|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen)\b`)

	// Iron shorthand: "7i" -> "7-iron".
	reIronShorthand = regexp.MustCompile(`(?i)\b([1-9])i\b`)
	// Wood shorthand: "3w" -> "3-wood".
	reWoodShorthand = regexp.MustCompile(`(?i)\b([1-9])w\b`)

	// Runs of sentence punctuation collapse to one instance. Asterisks and
	// hyphens are excluded (masks and club names use them).
	rePunctRun      = regexp.MustCompile(`([.!?,;:])[.!?,;:]+`)
	reWhitespaceRun = regexp.MustCompile(`\s+`)
)

// defaultSlang expands multi-word golf slang and abbreviations. Matching is
// case-insensitive on word boundaries; longer phrases are applied first.
var defaultSlang = map[string]string{
	"pw":          "pitching wedge",
	"sw":          "sand wedge",
	"lw":          "lob wedge",
	"gw":          "gap wedge",
	"big dog":     "driver",
	"big stick":   "driver",
	"flatstick":   "putter",
	"flat stick":  "putter",
	"dance floor": "green",
	"the beach":   "the bunker",
	"sticks":      "clubs",
	"wedgie":      "wedge",
	"yds":         "yards",
	"mph":         "miles per hour",
}

// defaultProfanity is the built-in mask list. The lexicon file may extend it.
var defaultProfanity = []string{
	"damn", "dammit", "goddamn", "hell", "shit", "bullshit", "fuck",
	"fucking", "ass", "crap", "bastard",
}

// Normalizer runs the pipeline against a lexicon. The lexicon is swapped
// atomically when a watched override file changes, so Normalize itself stays
// lock-free and pure.
type Normalizer struct {
	lex atomic.Pointer[lexicon]
}

// New returns a Normalizer with the built-in lexicon.
func New() *Normalizer {
	n := &Normalizer{}
	n.lex.Store(compileLexicon(defaultSlang, defaultProfanity))
	return n
}

var defaultNormalizer = New()

// Normalize runs the default pipeline.
func Normalize(text string) Result {
	return defaultNormalizer.Normalize(text)
}

// Normalize runs the full pipeline. No I/O, no failure mode: empty or
// whitespace-only input yields an empty string.
func (n *Normalizer) Normalize(text string) Result {
	lex := n.lex.Load()

	res := Result{Text: text}

	// 1. Numbers: composite phrases before simple words.
	res.Text = replaceAll(res.Text, reHundredTens, KindNumber, &res, expandHundreds)
	res.Text = replaceAll(res.Text, reUnitTens, KindNumber, &res, expandUnitTens)
	res.Text = replaceAll(res.Text, reTensUnit, KindNumber, &res, expandTensUnit)
	res.Text = replaceAll(res.Text, reSimpleNumber, KindNumber, &res, expandSimpleNumber)

	// 2. Club and slang abbreviations.
	res.Text = replaceAll(res.Text, reIronShorthand, KindSlang, &res, func(groups []string) string {
		return groups[1] + "-iron"
	})
	res.Text = replaceAll(res.Text, reWoodShorthand, KindSlang, &res, func(groups []string) string {
		return groups[1] + "-wood"
	})
	for _, entry := range lex.slang {
		res.Text = replaceAll(res.Text, entry.pattern, KindSlang, &res, func([]string) string {
			return entry.replacement
		})
	}

	// 3. Profanity masking.
	if lex.profanity != nil {
		res.Text = replaceAll(res.Text, lex.profanity, KindProfanity, &res, func([]string) string {
			return profanityMask
		})
	}

	// 4. Whitespace and punctuation cleanup.
	res.Text = replaceAll(res.Text, rePunctRun, KindWhitespace, &res, func(groups []string) string {
		return groups[1]
	})
	if collapsed := reWhitespaceRun.ReplaceAllString(res.Text, " "); collapsed != res.Text {
		res.Modifications = append(res.Modifications, Modification{
			Kind: KindWhitespace, Original: res.Text, Replacement: collapsed,
		})
		res.Text = collapsed
	}
	if trimmed := strings.TrimSpace(res.Text); trimmed != res.Text {
		res.Modifications = append(res.Modifications, Modification{
			Kind: KindWhitespace, Original: res.Text, Replacement: trimmed,
		})
		res.Text = trimmed
	}

	res.WasModified = len(res.Modifications) > 0
	return res
}

// replaceAll applies one regex substitution and appends every hit to the
// modification log.
func replaceAll(text string, re *regexp.Regexp, kind Kind, res *Result, expand func(groups []string) string) string {
	return re.ReplaceAllStringFunc(text, func(match string) string {
		groups := re.FindStringSubmatch(match)
		replacement := expand(groups)
		if replacement == match {
			return match
		}
		res.Modifications = append(res.Modifications, Modification{
			Kind: kind, Original: match, Replacement: replacement,
		})
		return replacement
	})
}

func expandHundreds(groups []string) string {
	total := unitWords[strings.ToLower(groups[1])] * 100
	if len(groups) > 2 && groups[2] != "" {
		total += tensWords[strings.ToLower(groups[2])]
	}
	if len(groups) > 3 && groups[3] != "" {
		total += unitWords[strings.ToLower(groups[3])]
	}
	return strconv.Itoa(total)
}

func expandUnitTens(groups []string) string {
	return strconv.Itoa(unitWords[strings.ToLower(groups[1])]*100 + tensWords[strings.ToLower(groups[2])])
}

func expandTensUnit(groups []string) string {
	return strconv.Itoa(tensWords[strings.ToLower(groups[1])] + unitWords[strings.ToLower(groups[2])])
}

func expandSimpleNumber(groups []string) string {
	w := strings.ToLower(groups[1])
	if v, ok := unitWords[w]; ok {
		return strconv.Itoa(v)
	}
	if v, ok := tensWords[w]; ok {
		return strconv.Itoa(v)
	}
	if v, ok := teenWords[w]; ok {
		return strconv.Itoa(v)
	}
	return groups[1]
}
