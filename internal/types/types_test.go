package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		raw    string
		want   Intent
		wantOK bool
	}{
		{"club_adjustment", IntentClubAdjustment, true},
		{"clubAdjustment", IntentClubAdjustment, true},
		{"Club Adjustment", IntentClubAdjustment, true},
		{"shot-recommendation", IntentShotRecommendation, true},
		{"  feedback  ", IntentFeedback, true},
		{"HELP_REQUEST", IntentHelpRequest, true},
		{"order_pizza", IntentUnknown, false},
		{"unknown", IntentUnknown, false},
		{"", IntentUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseIntent(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestKnownIntentsAreParseable(t *testing.T) {
	for _, intent := range KnownIntents {
		got, ok := ParseIntent(string(intent))
		assert.True(t, ok, "%s did not round-trip", intent)
		assert.Equal(t, intent, got)
		assert.NotEqual(t, "Something else", intent.Label())
	}
	assert.Len(t, KnownIntents, 15)
	assert.False(t, IntentUnknown.Known())
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.0, ClampConfidence(-0.5))
	assert.Equal(t, 0.0, ClampConfidence(math.NaN()))
	assert.Equal(t, 1.0, ClampConfidence(1.7))
	assert.Equal(t, 0.85, ClampConfidence(0.85))
}

func TestEntitiesSanitize(t *testing.T) {
	e := Entities{Fatigue: 15, HoleNumber: 25, Yardage: -10}.Sanitize()
	assert.Equal(t, 10, e.Fatigue)
	assert.Zero(t, e.HoleNumber)
	assert.Zero(t, e.Yardage)

	e = Entities{Fatigue: -2, HoleNumber: 18, Yardage: 150}.Sanitize()
	assert.Equal(t, 1, e.Fatigue)
	assert.Equal(t, 18, e.HoleNumber)
	assert.Equal(t, 150, e.Yardage)
}

func TestEntitiesHas(t *testing.T) {
	e := Entities{Club: "7-iron", HoleNumber: 5}
	assert.True(t, e.Has("club"))
	assert.True(t, e.Has("hole_number"))
	assert.False(t, e.Has("yardage"))
	assert.False(t, e.Has("no_such_entity"))
}

func TestPrerequisiteDescribe(t *testing.T) {
	for _, p := range []Prerequisite{PrereqBagConfigured, PrereqRoundActive, PrereqRecoveryData, PrereqCourseSelected} {
		assert.NotEmpty(t, p.Describe())
		assert.NotEqual(t, string(p), p.Describe())
	}
}
