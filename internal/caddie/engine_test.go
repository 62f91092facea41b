package caddie

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MinAutocalibratedSamples = 10
	return cfg
}

func bagOf(clubs ...PlayerBagClub) PlayerBag {
	return PlayerBag{Clubs: clubs}
}

func activeClub(id string) PlayerBagClub {
	return PlayerBagClub{ClubID: id, Label: id, Active: true}
}

func statsMap(entries ...*ClubDistanceStats) StatsMap {
	m := make(StatsMap, len(entries))
	for _, e := range entries {
		m[e.Club] = *e
	}
	return m
}

func TestDecideCalibratedSevenIron(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	d := engine.Decide(DecisionRequest{
		Hole:  Hole{Number: 4, DistanceM: 150},
		Bag:   bagOf(activeClub("7i")),
		Stats: statsMap(statsWith("7i", 12, 150)),
	})

	require.True(t, d.HasRecommendation())
	assert.Equal(t, "7i", *d.RecommendedClubID)
	assert.Equal(t, 4, d.HoleNumber)
	assert.Equal(t, StrategyAttack, d.Strategy)
	assert.Equal(t, TargetGreen, d.TargetType)
	assert.Equal(t, SourceAutoCalibrated, d.RecommendedClubDistanceSource)
	assert.Equal(t, ReadinessReady, d.RecommendedClubReadiness)
	assert.Equal(t, 12, d.RecommendedClubSampleCount)
	assert.Equal(t, 10, d.RecommendedClubMinSamples)
	require.NotNil(t, d.TargetDistanceM)
	assert.Equal(t, 150.0, *d.TargetDistanceM)
	assert.Equal(t, 150.0, d.RawDistanceM)
	assert.Nil(t, d.RiskScore)
	assert.Equal(t, "Attack the green at 150 m with 7i. Carry calibrated from 12 of your shots.", d.Explanation)
}

func TestDecidePartialStatsStillRecommends(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	d := engine.Decide(DecisionRequest{
		Hole:  Hole{Number: 7, DistanceM: 150},
		Bag:   bagOf(activeClub("7i")),
		Stats: statsMap(statsWith("7i", 3, 150)),
	})

	require.NotNil(t, d.RecommendedClubID)
	assert.Equal(t, "7i", *d.RecommendedClubID)
	assert.Equal(t, SourcePartialStats, d.RecommendedClubDistanceSource)
	assert.Equal(t, ReadinessLearning, d.RecommendedClubReadiness)
	assert.Contains(t, d.Explanation, "Low confidence: 3/10 shots recorded to calibrate this club.")
}

func TestDecideNoActiveClubs(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	bag := bagOf(PlayerBagClub{ClubID: "7i", Label: "7i", Active: false})

	for _, b := range []PlayerBag{bag, {}} {
		d := engine.Decide(DecisionRequest{Hole: Hole{Number: 1, DistanceM: 150}, Bag: b})

		assert.False(t, d.HasRecommendation())
		assert.Equal(t, StrategyLayup, d.Strategy)
		assert.Equal(t, ReasonNoActiveClubs, d.Reason)
		assert.Equal(t, "No active clubs are configured in your bag.", d.Explanation)
		assert.Equal(t, 150.0, d.RawDistanceM)
	}
}

func TestDecideOnTarget(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	for _, distance := range []float64{0, -12} {
		d := engine.Decide(DecisionRequest{
			Hole:  Hole{Number: 9, DistanceM: distance},
			Bag:   bagOf(activeClub("7i")),
			Stats: statsMap(statsWith("7i", 12, 150)),
		})

		assert.Equal(t, StrategyAttack, d.Strategy)
		assert.Equal(t, TargetGreen, d.TargetType)
		assert.Nil(t, d.RecommendedClubID)
		assert.Equal(t, ReasonOnTarget, d.Reason)
		assert.Contains(t, d.Explanation, "On target")
		assert.Equal(t, distance, d.RawDistanceM)
	}
}

func TestDecideLayupWhenRiskExceedsCeiling(t *testing.T) {
	cfg := testConfig()
	cfg.RiskCeiling = 0.1
	engine := NewEngine(cfg, StandardCarryTable)
	profiles := NewProfileSet(profile("7i", IntentStraight, 6, 0.2, 0.1))

	d := engine.Decide(DecisionRequest{
		Hole:     Hole{Number: 12, DistanceM: 150},
		Bag:      bagOf(activeClub("7i"), activeClub("8i")),
		Stats:    statsMap(statsWith("7i", 12, 150), statsWith("8i", 12, 140)),
		Profiles: profiles,
	})

	assert.Equal(t, StrategyLayup, d.Strategy)
	assert.Equal(t, TargetLayup, d.TargetType)
	assert.Equal(t, ReasonRiskCeiling, d.Reason)
	require.NotNil(t, d.TargetDistanceM)
	assert.Less(t, *d.TargetDistanceM, d.RawDistanceM)
	assert.Equal(t, 140.0, *d.TargetDistanceM)
	assert.Equal(t, 150.0, d.RawDistanceM)
	require.NotNil(t, d.RecommendedClubID)
	assert.Equal(t, "8i", *d.RecommendedClubID)
	assert.Contains(t, d.Explanation, "Lay up to 140 m with 8i")
	assert.Contains(t, d.Explanation, "too much miss risk")
}

func TestDecideAttackWhenRiskBelowCeiling(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	profiles := NewProfileSet(profile("7i", IntentStraight, 6, 0.03, 0.01))

	d := engine.Decide(DecisionRequest{
		Hole:     Hole{Number: 3, DistanceM: 150, HazardSide: HazardLeft},
		Bag:      bagOf(activeClub("7i")),
		Stats:    statsMap(statsWith("7i", 12, 150)),
		Profiles: profiles,
	})

	assert.Equal(t, StrategyAttack, d.Strategy)
	assert.Equal(t, IntentStraight, d.RecommendedIntent)
	require.NotNil(t, d.RiskScore)
	assert.InDelta(t, 0.06+0.01+0.02, *d.RiskScore, 1e-9)
	assert.Contains(t, d.Explanation, "away from the hazard on the left")
}

func TestDecidePreferenceOverridesCeiling(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	profiles := NewProfileSet(profile("7i", IntentStraight, 6, 0.2, 0.1))
	req := DecisionRequest{
		Hole:     Hole{Number: 12, DistanceM: 150},
		Bag:      bagOf(activeClub("7i"), activeClub("8i")),
		Stats:    statsMap(statsWith("7i", 12, 150), statsWith("8i", 12, 140)),
		Profiles: profiles,
	}

	balanced := engine.Decide(req)
	assert.Equal(t, StrategyLayup, balanced.Strategy)

	aggressive := RiskAggressive
	req.Preference = &aggressive
	d := engine.Decide(req)
	assert.Equal(t, StrategyAttack, d.Strategy)
	assert.Equal(t, "7i", *d.RecommendedClubID)
}

func TestDecideLayupShortOfHazard(t *testing.T) {
	cfg := testConfig()
	cfg.RiskCeiling = 0.1
	engine := NewEngine(cfg, StandardCarryTable)
	hazard := 130.0

	d := engine.Decide(DecisionRequest{
		Hole:     Hole{Number: 5, DistanceM: 150, HazardDistanceM: &hazard, HazardSide: HazardRight},
		Bag:      bagOf(activeClub("7i"), activeClub("8i"), activeClub("9i")),
		Stats:    statsMap(statsWith("7i", 12, 150), statsWith("8i", 12, 140), statsWith("9i", 12, 120)),
		Profiles: NewProfileSet(profile("7i", IntentStraight, 6, 0.2, 0.1)),
	})

	assert.Equal(t, StrategyLayup, d.Strategy)
	require.NotNil(t, d.TargetDistanceM)
	assert.Equal(t, 120.0, *d.TargetDistanceM)
	assert.Equal(t, "9i", *d.RecommendedClubID)
	assert.Equal(t, 150.0, d.RawDistanceM)
}

func TestDecideLayupWhenOutOfRange(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	d := engine.Decide(DecisionRequest{
		Hole:  Hole{Number: 2, DistanceM: 300},
		Bag:   bagOf(activeClub("driver"), activeClub("3w")),
		Stats: statsMap(statsWith("driver", 20, 210), statsWith("3w", 15, 195)),
	})

	assert.Equal(t, StrategyLayup, d.Strategy)
	assert.Equal(t, ReasonOutOfRange, d.Reason)
	require.NotNil(t, d.TargetDistanceM)
	assert.Equal(t, 210.0, *d.TargetDistanceM)
	assert.Equal(t, "driver", *d.RecommendedClubID)
	assert.Equal(t, 300.0, d.RawDistanceM)
	assert.Contains(t, d.Explanation, "beyond your longest carry")
}

func TestDecideWithinCarryMarginAttacks(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	d := engine.Decide(DecisionRequest{
		Hole:  Hole{Number: 2, DistanceM: 218},
		Bag:   bagOf(activeClub("driver")),
		Stats: statsMap(statsWith("driver", 20, 210)),
	})

	assert.Equal(t, StrategyAttack, d.Strategy)
	assert.Equal(t, "driver", *d.RecommendedClubID)
}

func TestDecideLayupWithNoRoom(t *testing.T) {
	cfg := testConfig()
	cfg.RiskCeiling = 0.1
	engine := NewEngine(cfg, StandardCarryTable)
	hazard := 6.0

	d := engine.Decide(DecisionRequest{
		Hole:     Hole{Number: 8, DistanceM: 150, HazardDistanceM: &hazard},
		Bag:      bagOf(activeClub("7i")),
		Stats:    statsMap(statsWith("7i", 12, 150)),
		Profiles: NewProfileSet(profile("7i", IntentStraight, 6, 0.2, 0.1)),
	})

	assert.Equal(t, StrategyLayup, d.Strategy)
	assert.Nil(t, d.TargetDistanceM)
	assert.Nil(t, d.RecommendedClubID)
	assert.Contains(t, d.Explanation, "No safe layup distance")
}

func TestDecideNoUsableCarry(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	d := engine.Decide(DecisionRequest{
		Hole: Hole{Number: 6, DistanceM: 150},
		Bag:  bagOf(activeClub("chipper")),
	})

	assert.Nil(t, d.RecommendedClubID)
	assert.Equal(t, ReasonNoCandidate, d.Reason)
	assert.Equal(t, StrategyLayup, d.Strategy)
	assert.Contains(t, d.Explanation, "No club in your bag")
}

func TestDecideTieBreaks(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)

	t.Run("higher readiness wins", func(t *testing.T) {
		d := engine.Decide(DecisionRequest{
			Hole:  Hole{Number: 1, DistanceM: 150},
			Bag:   bagOf(activeClub("7i"), activeClub("7h")),
			Stats: statsMap(statsWith("7i", 3, 150), statsWith("7h", 12, 150)),
		})
		assert.Equal(t, "7h", *d.RecommendedClubID)
	})

	t.Run("lowest club id wins", func(t *testing.T) {
		d := engine.Decide(DecisionRequest{
			Hole:  Hole{Number: 1, DistanceM: 150},
			Bag:   bagOf(activeClub("b7"), activeClub("a7")),
			Stats: statsMap(statsWith("b7", 12, 145), statsWith("a7", 12, 155)),
		})
		assert.Equal(t, "a7", *d.RecommendedClubID)
	})

	t.Run("inactive clubs are ignored", func(t *testing.T) {
		d := engine.Decide(DecisionRequest{
			Hole: Hole{Number: 1, DistanceM: 150},
			Bag: bagOf(
				PlayerBagClub{ClubID: "7i", Active: false},
				activeClub("6i"),
			),
			Stats: statsMap(statsWith("7i", 12, 150), statsWith("6i", 12, 160)),
		})
		assert.Equal(t, "6i", *d.RecommendedClubID)
	})
}

func TestDecideManualOverride(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	manual := 150.0
	club := activeClub("7i")
	club.ManualAvgCarryM = &manual

	d := engine.Decide(DecisionRequest{
		Hole:  Hole{Number: 1, DistanceM: 150},
		Bag:   bagOf(club, activeClub("6i")),
		Stats: statsMap(statsWith("7i", 2, 138)),
	})

	assert.Equal(t, "7i", *d.RecommendedClubID)
	assert.Equal(t, SourceManual, d.RecommendedClubDistanceSource)
	assert.Equal(t, ReadinessReady, d.RecommendedClubReadiness)
	assert.Contains(t, d.Explanation, "manual setting")
}

func TestDecideUnknownProfileIsDownWeighted(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	req := DecisionRequest{
		Hole:  Hole{Number: 1, DistanceM: 150},
		Bag:   bagOf(activeClub("7i"), activeClub("6i")),
		Stats: statsMap(statsWith("7i", 12, 150), statsWith("6i", 12, 153)),
	}

	withoutProfiles := engine.Decide(req)
	assert.Equal(t, "7i", *withoutProfiles.RecommendedClubID)

	req.Profiles = NewProfileSet(profile("6i", IntentStraight, 6, 0.02, 0.02))
	d := engine.Decide(req)
	assert.Equal(t, "6i", *d.RecommendedClubID)
	assert.NotNil(t, d.RiskScore)

	req.Stats = statsMap(statsWith("7i", 12, 150), statsWith("6i", 12, 160))
	far := engine.Decide(req)
	assert.Equal(t, "7i", *far.RecommendedClubID, "penalty must not exclude the club")
	assert.Nil(t, far.RiskScore)
}

func TestDecideIsDeterministic(t *testing.T) {
	engine := NewEngine(testConfig(), StandardCarryTable)
	hazard := 135.0
	req := DecisionRequest{
		Hole:  Hole{Number: 14, DistanceM: 152, HazardDistanceM: &hazard, HazardSide: HazardLeft},
		Bag:   bagOf(activeClub("8i"), activeClub("7i"), activeClub("6i"), activeClub("7h")),
		Stats: statsMap(statsWith("8i", 12, 140), statsWith("7i", 4, 152), statsWith("7h", 12, 152)),
		Profiles: NewProfileSet(
			profile("7i", IntentStraight, 6, 0.05, 0.02),
			profile("7h", IntentDraw, 7, 0.08, 0.01),
			profile("7h", IntentFade, 7, 0.01, 0.08),
		),
	}

	first := engine.Decide(req)

	var wg sync.WaitGroup
	results := make([]Decision, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Decide(req)
		}(i)
	}
	wg.Wait()

	for _, d := range results {
		assert.Equal(t, first, d)
	}
}

func TestDecideRawDistanceIndependentOfStrategy(t *testing.T) {
	for _, ceiling := range []float64{0.01, 0.25, 1} {
		cfg := testConfig()
		cfg.RiskCeiling = ceiling
		engine := NewEngine(cfg, StandardCarryTable)

		d := engine.Decide(DecisionRequest{
			Hole:     Hole{Number: 1, DistanceM: 163},
			Bag:      bagOf(activeClub("6i"), activeClub("8i")),
			Stats:    statsMap(statsWith("6i", 12, 160), statsWith("8i", 12, 140)),
			Profiles: NewProfileSet(profile("6i", IntentStraight, 6, 0.1, 0.05)),
		})

		assert.Equal(t, 163.0, d.RawDistanceM, "ceiling=%v", ceiling)
		assert.Equal(t, BuildExplanation(d), d.Explanation)
	}
}
