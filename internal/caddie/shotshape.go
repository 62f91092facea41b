package caddie

import (
	"fmt"
	"math"
)

// ShotShapeProfile is population dispersion for one club and intent.
type ShotShapeProfile struct {
	Club           string     `json:"club"`
	Intent         ShotIntent `json:"intent"`
	CoreCarryMeanM float64    `json:"core_carry_mean_m"`
	CoreCarryStdM  float64    `json:"core_carry_std_m"`
	CoreSideMeanM  float64    `json:"core_side_mean_m"`
	CoreSideStdM   float64    `json:"core_side_std_m"`
	TailLeftProb   float64    `json:"tail_left_prob"`
	TailRightProb  float64    `json:"tail_right_prob"`
}

// Validate enforces probability bounds and non-negative spreads.
func (p ShotShapeProfile) Validate() error {
	if _, err := ParseIntent(string(p.Intent)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	if !probability(p.TailLeftProb) || !probability(p.TailRightProb) {
		return fmt.Errorf("%w: tail probabilities must be within [0,1]", ErrInvalidProfile)
	}
	if p.TailLeftProb+p.TailRightProb > 1 {
		return fmt.Errorf("%w: tail probabilities sum to %.3f", ErrInvalidProfile, p.TailLeftProb+p.TailRightProb)
	}
	if p.CoreCarryStdM < 0 || p.CoreSideStdM < 0 || math.IsNaN(p.CoreCarryStdM) || math.IsNaN(p.CoreSideStdM) {
		return fmt.Errorf("%w: negative dispersion", ErrInvalidProfile)
	}
	return nil
}

func probability(v float64) bool {
	return v >= 0 && v <= 1 && !math.IsNaN(v)
}

// ShotShapeLookup returns the profile for a club and intent, or false when
// the combination has not been seen.
type ShotShapeLookup interface {
	ProfileFor(clubID string, intent ShotIntent) (ShotShapeProfile, bool)
}

type profileKey struct {
	club   string
	intent ShotIntent
}

// ProfileSet is an in-memory ShotShapeLookup. Invalid profiles are dropped on
// insert so lookups only ever return accepted profiles.
type ProfileSet struct {
	profiles map[profileKey]ShotShapeProfile
}

func NewProfileSet(profiles ...ShotShapeProfile) *ProfileSet {
	s := &ProfileSet{profiles: make(map[profileKey]ShotShapeProfile, len(profiles))}
	for _, p := range profiles {
		_ = s.Add(p)
	}
	return s
}

func (s *ProfileSet) Add(p ShotShapeProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.profiles[profileKey{club: p.Club, intent: p.Intent}] = p
	return nil
}

func (s *ProfileSet) ProfileFor(clubID string, intent ShotIntent) (ShotShapeProfile, bool) {
	if s == nil {
		return ShotShapeProfile{}, false
	}
	p, ok := s.profiles[profileKey{club: clubID, intent: intent}]
	return p, ok
}

func (s *ProfileSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

// RiskScore rates the miss risk of a profile for the remaining distance. It
// strictly increases with either tail probability. The tail toward the hazard
// side is weighted by cfg.HazardSideWeight.
func RiskScore(p ShotShapeProfile, remainingM float64, hazard HazardSide, cfg Config) float64 {
	left, right := 1.0, 1.0
	weight := cfg.HazardSideWeight
	if weight < 1 {
		weight = 1
	}
	switch hazard {
	case HazardLeft:
		left = weight
	case HazardRight:
		right = weight
	case HazardNone:
	}

	if remainingM < 1 {
		remainingM = 1
	}
	dispersion := p.CoreCarryStdM / remainingM
	return left*p.TailLeftProb + right*p.TailRightProb + cfg.DispersionWeight*dispersion
}

// IntentRisk is the risk of one club/intent pairing.
type IntentRisk struct {
	Intent  ShotIntent
	Score   float64
	Profile ShotShapeProfile
}

// BestIntent returns the lowest-risk intent available for a club. Ties go to
// the tighter carry dispersion, then to intent order. ok is false when no
// profile exists for any intent.
func BestIntent(lookup ShotShapeLookup, clubID string, remainingM float64, hazard HazardSide, cfg Config) (IntentRisk, bool) {
	if lookup == nil {
		return IntentRisk{}, false
	}
	var best IntentRisk
	found := false
	for _, intent := range AllIntents {
		p, ok := lookup.ProfileFor(clubID, intent)
		if !ok {
			continue
		}
		candidate := IntentRisk{Intent: intent, Score: RiskScore(p, remainingM, hazard, cfg), Profile: p}
		if !found || lessRisk(candidate, best) {
			best = candidate
			found = true
		}
	}
	return best, found
}

func lessRisk(a, b IntentRisk) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.Profile.CoreCarryStdM != b.Profile.CoreCarryStdM {
		return a.Profile.CoreCarryStdM < b.Profile.CoreCarryStdM
	}
	return intentRank(a.Intent) < intentRank(b.Intent)
}
