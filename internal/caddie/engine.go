package caddie

import (
	"math"
)

// DecisionRequest is everything the engine reads for one hole.
type DecisionRequest struct {
	Hole     Hole
	Bag      PlayerBag
	Stats    StatsMap
	Profiles ShotShapeLookup
	// Preference, when set, replaces the preset fields of the engine config
	// for this request only.
	Preference *RiskPreference
}

// Engine turns a hole, a bag and the player's distance data into a Decision.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	cfg      Config
	defaults DefaultCarryTable
}

func NewEngine(cfg Config, defaults DefaultCarryTable) *Engine {
	if defaults == nil {
		defaults = StandardCarryTable
	}
	return &Engine{cfg: cfg, defaults: defaults}
}

func (e *Engine) Config() Config {
	return e.cfg
}

type candidate struct {
	club        PlayerBagClub
	cal         Calibration
	readiness   ClubReadinessLevel
	risk        IntentRisk
	hasProfile  bool
	matchOffset float64
}

// Decide never fails on missing or thin data; it degrades the confidence
// fields of the returned Decision instead.
func (e *Engine) Decide(req DecisionRequest) Decision {
	cfg := e.cfg
	if req.Preference != nil {
		cfg = cfg.WithPreference(*req.Preference)
	}
	minSamples := cfg.minSamples()
	hole := req.Hole
	hazard := hole.HazardSide
	if hazard == "" {
		hazard = HazardNone
	}

	d := Decision{
		HoleNumber:                hole.Number,
		RawDistanceM:              hole.DistanceM,
		RecommendedClubMinSamples: minSamples,
		RecommendedClubReadiness:  ReadinessUnready,
		HazardSide:                hazard,
	}

	if !(hole.DistanceM > 0) {
		d.Strategy = StrategyAttack
		d.TargetType = TargetGreen
		if !math.IsNaN(hole.DistanceM) {
			d.TargetDistanceM = floatPtr(hole.DistanceM)
		}
		d.Reason = ReasonOnTarget
		return finish(d)
	}

	active := req.Bag.ActiveClubs()
	if len(active) == 0 {
		d.Strategy = StrategyLayup
		d.TargetType = TargetLayup
		d.Reason = ReasonNoActiveClubs
		return finish(d)
	}

	candidates := e.calibrateAll(active, req.Stats, minSamples)
	if len(candidates) == 0 {
		d.Strategy = StrategyLayup
		d.TargetType = TargetLayup
		d.Reason = ReasonNoCandidate
		return finish(d)
	}

	anyProfile := scoreProfiles(candidates, req.Profiles, hole.DistanceM, hazard, cfg)
	best := selectClub(candidates, hole.DistanceM, anyProfile, cfg)
	longest := longestCarry(candidates)

	switch {
	case longest < hole.DistanceM-cfg.CarryGapMarginM:
		d.Strategy = StrategyLayup
		d.Reason = ReasonOutOfRange
	case anyProfile && best.hasProfile && best.risk.Score > cfg.RiskCeiling:
		d.Strategy = StrategyLayup
		d.Reason = ReasonRiskCeiling
	default:
		d.Strategy = StrategyAttack
		d.Reason = ReasonInRange
	}

	chosen := best
	switch d.Strategy {
	case StrategyAttack:
		d.TargetType = TargetGreen
		d.TargetDistanceM = floatPtr(hole.DistanceM)
	case StrategyLayup:
		d.TargetType = TargetLayup
		target, ok := layupDistance(hole, longest, cfg)
		if !ok {
			return finish(d)
		}
		d.TargetDistanceM = floatPtr(target)
		scoreProfiles(candidates, req.Profiles, target, hazard, cfg)
		chosen = selectClub(candidates, target, anyProfile, cfg)
	}

	d.RecommendedClubID = stringPtr(chosen.club.ClubID)
	d.RecommendedClubDistanceSource = chosen.cal.Source
	d.RecommendedClubSampleCount = chosen.cal.SampleCount
	d.RecommendedClubReadiness = chosen.readiness
	d.RecommendedClubCarryM = floatPtr(chosen.cal.EffectiveCarryM)
	if chosen.hasProfile {
		d.RecommendedIntent = chosen.risk.Intent
		d.RiskScore = floatPtr(chosen.risk.Score)
	}
	return finish(d)
}

func finish(d Decision) Decision {
	d.Explanation = BuildExplanation(d)
	return d
}

func (e *Engine) calibrateAll(clubs []PlayerBagClub, stats StatsMap, minSamples int) []*candidate {
	out := make([]*candidate, 0, len(clubs))
	for _, club := range clubs {
		var st *ClubDistanceStats
		if s, ok := stats[club.ClubID]; ok {
			st = &s
		}
		cal := Calibrate(club.ClubID, st, club.ManualAvgCarryM, e.defaults, minSamples)
		if !cal.OK {
			continue
		}
		out = append(out, &candidate{
			club:      club,
			cal:       cal,
			readiness: ClassifyReadiness(cal.Source, cal.SampleCount, minSamples),
		})
	}
	return out
}

// scoreProfiles refreshes each candidate's best intent for the given
// distance and reports whether any candidate has a profile at all.
func scoreProfiles(candidates []*candidate, lookup ShotShapeLookup, remainingM float64, hazard HazardSide, cfg Config) bool {
	found := false
	for _, c := range candidates {
		c.risk, c.hasProfile = BestIntent(lookup, c.club.ClubID, remainingM, hazard, cfg)
		if c.hasProfile {
			found = true
		}
	}
	return found
}

// selectClub picks the closest carry to target. Clubs without a profile are
// pushed back by the unknown-profile penalty when other clubs have one.
func selectClub(candidates []*candidate, targetM float64, anyProfile bool, cfg Config) *candidate {
	var best *candidate
	for _, c := range candidates {
		c.matchOffset = math.Abs(c.cal.EffectiveCarryM - targetM)
		if anyProfile && !c.hasProfile {
			c.matchOffset += cfg.UnknownProfilePenaltyM
		}
		if best == nil || betterMatch(c, best) {
			best = c
		}
	}
	return best
}

func betterMatch(a, b *candidate) bool {
	if a.matchOffset != b.matchOffset {
		return a.matchOffset < b.matchOffset
	}
	if a.readiness != b.readiness {
		return a.readiness > b.readiness
	}
	return a.club.ClubID < b.club.ClubID
}

func longestCarry(candidates []*candidate) float64 {
	longest := 0.0
	for _, c := range candidates {
		longest = math.Max(longest, c.cal.EffectiveCarryM)
	}
	return longest
}

// layupDistance lands the ball short of the nearer of hazard and green by the
// layup buffer, never beyond the longest carry in the bag.
func layupDistance(hole Hole, longest float64, cfg Config) (float64, bool) {
	short := hole.DistanceM
	if hole.HazardDistanceM != nil && *hole.HazardDistanceM > 0 && *hole.HazardDistanceM < short {
		short = *hole.HazardDistanceM
	}
	target := math.Min(short-cfg.LayupBufferM, longest)
	if !(target > 0) {
		return 0, false
	}
	return target, true
}
