package caddie

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(club string, intent ShotIntent, std, left, right float64) ShotShapeProfile {
	return ShotShapeProfile{
		Club:           club,
		Intent:         intent,
		CoreCarryMeanM: 160,
		CoreCarryStdM:  std,
		CoreSideMeanM:  0,
		CoreSideStdM:   5,
		TailLeftProb:   left,
		TailRightProb:  right,
	}
}

func TestProfileValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile ShotShapeProfile
		valid   bool
	}{
		{name: "typical", profile: profile("7i", IntentStraight, 6, 0.03, 0.01), valid: true},
		{name: "tails sum to one", profile: profile("7i", IntentDraw, 6, 0.5, 0.5), valid: true},
		{name: "tails over one", profile: profile("7i", IntentDraw, 6, 0.7, 0.4), valid: false},
		{name: "negative tail", profile: profile("7i", IntentFade, 6, -0.1, 0.2), valid: false},
		{name: "negative std", profile: profile("7i", IntentFade, -1, 0.1, 0.2), valid: false},
		{name: "unknown intent", profile: profile("7i", ShotIntent("hook"), 6, 0.1, 0.2), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.valid {
				assert.NoError(t, err)
				assert.LessOrEqual(t, tt.profile.TailLeftProb+tt.profile.TailRightProb, 1.0)
			} else {
				assert.ErrorIs(t, err, ErrInvalidProfile)
			}
		})
	}
}

func TestProfileSetDropsInvalidProfiles(t *testing.T) {
	set := NewProfileSet(
		profile("7i", IntentStraight, 6, 0.03, 0.01),
		profile("7i", IntentDraw, 6, 0.8, 0.3),
	)

	assert.Equal(t, 1, set.Len())
	_, ok := set.ProfileFor("7i", IntentDraw)
	assert.False(t, ok)

	p, ok := set.ProfileFor("7i", IntentStraight)
	require.True(t, ok)
	assert.Equal(t, 6.0, p.CoreCarryStdM)

	var nilSet *ProfileSet
	_, ok = nilSet.ProfileFor("7i", IntentStraight)
	assert.False(t, ok)
}

func TestRiskScoreIncreasesWithEachTail(t *testing.T) {
	cfg := DefaultConfig()

	for _, hazard := range []HazardSide{HazardNone, HazardLeft, HazardRight} {
		base := RiskScore(profile("7i", IntentStraight, 6, 0.05, 0.05), 150, hazard, cfg)
		moreLeft := RiskScore(profile("7i", IntentStraight, 6, 0.06, 0.05), 150, hazard, cfg)
		moreRight := RiskScore(profile("7i", IntentStraight, 6, 0.05, 0.06), 150, hazard, cfg)

		assert.Greater(t, moreLeft, base, "hazard=%s", hazard)
		assert.Greater(t, moreRight, base, "hazard=%s", hazard)
	}
}

func TestRiskScoreWeightsHazardSide(t *testing.T) {
	cfg := DefaultConfig()
	leftMiss := profile("7i", IntentDraw, 6, 0.10, 0.02)

	assert.Greater(t,
		RiskScore(leftMiss, 150, HazardLeft, cfg),
		RiskScore(leftMiss, 150, HazardRight, cfg))
	assert.InDelta(t, 0.12+0.5*6.0/150, RiskScore(leftMiss, 150, HazardNone, cfg), 1e-9)
}

func TestRiskScoreDispersionRatio(t *testing.T) {
	cfg := DefaultConfig()
	p := profile("7i", IntentStraight, 6, 0.03, 0.01)

	assert.Greater(t, RiskScore(p, 50, HazardNone, cfg), RiskScore(p, 150, HazardNone, cfg))
	// remaining distance below one meter is clamped
	assert.Equal(t, RiskScore(p, 1, HazardNone, cfg), RiskScore(p, 0, HazardNone, cfg))
}

func TestBestIntentPrefersSafeSide(t *testing.T) {
	cfg := DefaultConfig()
	set := NewProfileSet(
		profile("7i", IntentStraight, 6, 0.05, 0.05),
		profile("7i", IntentDraw, 6, 0.09, 0.01),
		profile("7i", IntentFade, 6, 0.01, 0.09),
	)

	best, ok := BestIntent(set, "7i", 150, HazardLeft, cfg)
	require.True(t, ok)
	assert.Equal(t, IntentFade, best.Intent)

	best, ok = BestIntent(set, "7i", 150, HazardRight, cfg)
	require.True(t, ok)
	assert.Equal(t, IntentDraw, best.Intent)
}

func TestBestIntentTieBreaks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DispersionWeight = 0

	tighter := NewProfileSet(
		profile("7i", IntentStraight, 8, 0.05, 0.05),
		profile("7i", IntentFade, 5, 0.05, 0.05),
	)
	best, ok := BestIntent(tighter, "7i", 150, HazardNone, cfg)
	require.True(t, ok)
	assert.Equal(t, IntentFade, best.Intent)

	identical := NewProfileSet(
		profile("7i", IntentFade, 6, 0.05, 0.05),
		profile("7i", IntentDraw, 6, 0.05, 0.05),
	)
	best, ok = BestIntent(identical, "7i", 150, HazardNone, cfg)
	require.True(t, ok)
	assert.Equal(t, IntentDraw, best.Intent)

	_, ok = BestIntent(identical, "5i", 150, HazardNone, cfg)
	assert.False(t, ok)

	_, ok = BestIntent(nil, "7i", 150, HazardNone, cfg)
	assert.False(t, ok)
}
