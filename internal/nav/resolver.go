// Package nav turns routing results into concrete destinations and tracks
// the navigation stack. Resolution is pure and total: every screen in the
// routing tables has a constructor here, and a constructor either returns a
// valid destination or nil, never a panic.
package nav

import (
	"fmt"
	"strconv"

	"fairway/internal/logging"
	"fairway/internal/types"
)

// Destination is a fully validated screen instance ready to display.
type Destination struct {
	Module types.Module
	Screen string
	Title  string
	// Params carries only validated parameters; invalid optional values
	// are dropped during resolution rather than surfaced as errors.
	Params map[string]string
}

// constructor builds a Destination from raw target parameters. Returning an
// error means a required parameter was missing or out of range.
type constructor func(params map[string]string) (*Destination, error)

var screenConstructors = map[string]constructor{
	"club_adjustment":     buildClubAdjustment,
	"shot_recommendation": buildShotRecommendation,
	"score_entry":         buildScoreEntry,
	"round_setup":         fixedScreen(types.ModuleCaddy, "round_setup", "Start a Round"),
	"round_summary":       fixedScreen(types.ModuleCaddy, "round_summary", "Round Summary"),
	"weather":             fixedScreen(types.ModuleCaddy, "weather", "Course Weather"),
	"drill_library":       fixedScreen(types.ModuleCoach, "drill_library", "Practice Drills"),
	"stats":               fixedScreen(types.ModuleCoach, "stats", "Your Stats"),
	"swing_analysis":      fixedScreen(types.ModuleCoach, "swing_analysis", "Swing Analysis"),
	"readiness":           fixedScreen(types.ModuleRecovery, "readiness", "Readiness Check"),
	"bag_editor":          fixedScreen(types.ModuleSettings, "bag_editor", "Your Bag"),
	"preferences":         fixedScreen(types.ModuleSettings, "preferences", "Preferences"),
}

// Build resolves a routing target into a destination. A nil result means the
// target could not be built; callers keep the current screen in that case.
func Build(target *types.RoutingTarget) *Destination {
	if target == nil {
		return nil
	}
	build, ok := screenConstructors[target.Screen]
	if !ok {
		logging.Get(logging.CategoryNav).Warn("no constructor for screen %q", target.Screen)
		return nil
	}
	dest, err := build(target.Parameters)
	if err != nil {
		logging.Get(logging.CategoryNav).Warn("cannot build %q: %v", target.Screen, err)
		return nil
	}
	return dest
}

// Validate reports whether a target would resolve, without building it.
func Validate(target *types.RoutingTarget) bool {
	return Build(target) != nil
}

func fixedScreen(module types.Module, screen, title string) constructor {
	return func(params map[string]string) (*Destination, error) {
		return &Destination{Module: module, Screen: screen, Title: title, Params: copyParams(params)}, nil
	}
}

func buildClubAdjustment(params map[string]string) (*Destination, error) {
	club := params["club"]
	if club == "" {
		return nil, fmt.Errorf("club is required")
	}
	return &Destination{
		Module: types.ModuleCaddy,
		Screen: "club_adjustment",
		Title:  "Adjust " + club,
		Params: map[string]string{"club": club},
	}, nil
}

func buildShotRecommendation(params map[string]string) (*Destination, error) {
	// Every parameter is optional; invalid values are dropped.
	out := map[string]string{}
	if club := params["club"]; club != "" {
		out["club"] = club
	}
	if yardage, ok := parseRange(params["yardage"], 1, 400); ok {
		out["yardage"] = strconv.Itoa(yardage)
	}
	if lie := params["lie"]; lie != "" {
		out["lie"] = lie
	}
	if wind := params["wind"]; wind != "" {
		out["wind"] = wind
	}
	return &Destination{
		Module: types.ModuleCaddy,
		Screen: "shot_recommendation",
		Title:  "Shot Recommendation",
		Params: out,
	}, nil
}

func buildScoreEntry(params map[string]string) (*Destination, error) {
	hole, ok := parseRange(params["hole"], 1, 18)
	if !ok {
		return nil, fmt.Errorf("hole must be 1..18, got %q", params["hole"])
	}
	return &Destination{
		Module: types.ModuleCaddy,
		Screen: "score_entry",
		Title:  fmt.Sprintf("Score for Hole %d", hole),
		Params: map[string]string{"hole": strconv.Itoa(hole)},
	}, nil
}

func parseRange(raw string, lo, hi int) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func copyParams(params map[string]string) map[string]string {
	out := make(map[string]string, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
