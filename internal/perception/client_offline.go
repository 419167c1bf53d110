package perception

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
)

// OfflineClient is a deterministic, keyword-driven stand-in for the real
// classification service. It backs the --offline chat mode and makes the
// full pipeline exercisable without an API key. Confidence values are fixed
// per rule so demos land in predictable decision bands.
type OfflineClient struct{}

// NewOfflineClient creates the scripted client.
func NewOfflineClient() *OfflineClient {
	return &OfflineClient{}
}

var (
	reOfflineClub    = regexp.MustCompile(`\b([1-9]-(?:iron|wood)|driver|putter|pitching wedge|sand wedge|lob wedge|gap wedge)\b`)
	reOfflineYardage = regexp.MustCompile(`\b(\d{2,3})\b`)
	reOfflineHole    = regexp.MustCompile(`\bhole (\d{1,2})\b`)
)

type offlineRule struct {
	keywords   []string
	intent     string
	confidence float64
}

// Rules are checked in order; first hit wins.
var offlineRules = []offlineRule{
	{[]string{"feels long", "feels short", "adjust", "dial back"}, "club_adjustment", 0.85},
	{[]string{"what club", "club should", "how far", "carry"}, "shot_recommendation", 0.85},
	{[]string{"score", "put me down", "made a"}, "score_entry", 0.80},
	{[]string{"start a round", "tee off", "new round"}, "round_start", 0.85},
	{[]string{"finish the round", "end the round"}, "round_end", 0.85},
	{[]string{"weather", "forecast"}, "weather_check", 0.85},
	{[]string{"miss", "tendency", "pattern"}, "pattern_query", 0.80},
	{[]string{"drill", "practice"}, "drill_request", 0.80},
	{[]string{"stats", "average"}, "stats_lookup", 0.80},
	{[]string{"swing"}, "swing_analysis", 0.75},
	{[]string{"tired", "sore", "fatigue", "readiness", "recovery"}, "recovery_check", 0.85},
	{[]string{"bag"}, "bag_setup", 0.75},
	{[]string{"settings", "preferences"}, "settings_change", 0.80},
	{[]string{"help", "what can you"}, "help_request", 0.70},
	{[]string{"feedback", "love this app"}, "feedback", 0.80},
}

// Classify produces a canned JSON response from keyword rules.
func (c *OfflineClient) Classify(_ context.Context, text, _ string) (string, error) {
	lower := strings.ToLower(text)

	intent := "unknown"
	confidence := 0.2
	for _, rule := range offlineRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				intent = rule.intent
				confidence = rule.confidence
				break
			}
		}
		if intent != "unknown" {
			break
		}
	}

	entities := map[string]interface{}{}
	if m := reOfflineClub.FindString(lower); m != "" {
		entities["club"] = m
	}
	if m := reOfflineHole.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			entities["hole_number"] = n
		}
	} else if m := reOfflineYardage.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			entities["yardage"] = n
		}
	}

	payload := map[string]interface{}{
		"intent":     intent,
		"confidence": confidence,
		"entities":   entities,
		"user_goal":  text,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Name identifies the provider.
func (c *OfflineClient) Name() string { return "offline" }
