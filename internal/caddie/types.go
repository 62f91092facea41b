package caddie

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnknownIntent         = errors.New("unknown shot intent")
	ErrUnknownHazardSide     = errors.New("unknown hazard side")
	ErrUnknownRiskPreference = errors.New("unknown risk preference")
	ErrUnknownReadiness      = errors.New("unknown readiness level")
	ErrInvalidProfile        = errors.New("invalid shot shape profile")
)

// DistanceSource describes where a club's carry estimate came from
type DistanceSource string

const (
	SourceDefault        DistanceSource = "default"
	SourceManual         DistanceSource = "manual"
	SourcePartialStats   DistanceSource = "partial_stats"
	SourceAutoCalibrated DistanceSource = "auto_calibrated"
)

// ClubReadinessLevel is ordered: unready < learning < ready
type ClubReadinessLevel int

const (
	ReadinessUnready ClubReadinessLevel = iota
	ReadinessLearning
	ReadinessReady
)

func (r ClubReadinessLevel) String() string {
	switch r {
	case ReadinessUnready:
		return "unready"
	case ReadinessLearning:
		return "learning"
	case ReadinessReady:
		return "ready"
	}
	return fmt.Sprintf("readiness(%d)", int(r))
}

func (r ClubReadinessLevel) MarshalText() ([]byte, error) {
	switch r {
	case ReadinessUnready, ReadinessLearning, ReadinessReady:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownReadiness, int(r))
}

func (r *ClubReadinessLevel) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unready":
		*r = ReadinessUnready
	case "learning":
		*r = ReadinessLearning
	case "ready":
		*r = ReadinessReady
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReadiness, string(text))
	}
	return nil
}

// Strategy is the decision between aiming at the target or short of it
type Strategy string

const (
	StrategyAttack Strategy = "attack"
	StrategyLayup  Strategy = "layup"
)

type TargetType string

const (
	TargetGreen TargetType = "green"
	TargetLayup TargetType = "layup"
)

// ShotIntent is the planned curvature of the shot
type ShotIntent string

const (
	IntentStraight ShotIntent = "straight"
	IntentDraw     ShotIntent = "draw"
	IntentFade     ShotIntent = "fade"
)

// AllIntents lists intents in tie-break order.
var AllIntents = []ShotIntent{IntentStraight, IntentDraw, IntentFade}

func ParseIntent(s string) (ShotIntent, error) {
	switch ShotIntent(strings.ToLower(strings.TrimSpace(s))) {
	case IntentStraight:
		return IntentStraight, nil
	case IntentDraw:
		return IntentDraw, nil
	case IntentFade:
		return IntentFade, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, s)
}

func intentRank(i ShotIntent) int {
	switch i {
	case IntentStraight:
		return 0
	case IntentDraw:
		return 1
	case IntentFade:
		return 2
	}
	return len(AllIntents)
}

// HazardSide marks which side of the hole punishes a miss
type HazardSide string

const (
	HazardNone  HazardSide = "none"
	HazardLeft  HazardSide = "left"
	HazardRight HazardSide = "right"
)

// ParseHazardSide treats an empty string as HazardNone.
func ParseHazardSide(s string) (HazardSide, error) {
	switch HazardSide(strings.ToLower(strings.TrimSpace(s))) {
	case "", HazardNone:
		return HazardNone, nil
	case HazardLeft:
		return HazardLeft, nil
	case HazardRight:
		return HazardRight, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownHazardSide, s)
}

// DecisionReason records why a strategy was picked
type DecisionReason string

const (
	ReasonOnTarget      DecisionReason = "on_target"
	ReasonNoActiveClubs DecisionReason = "no_active_clubs"
	ReasonNoCandidate   DecisionReason = "no_candidate"
	ReasonInRange       DecisionReason = "in_range"
	ReasonOutOfRange    DecisionReason = "out_of_range"
	ReasonRiskCeiling   DecisionReason = "risk_ceiling"
)

// ClubDistanceStats are per-club aggregates supplied by the stats store.
type ClubDistanceStats struct {
	Club           string    `json:"club"`
	Samples        int       `json:"samples"`
	BaselineCarryM float64   `json:"baseline_carry_m"`
	CarryStdM      *float64  `json:"carry_std_m,omitempty"`
	LastUpdated    time.Time `json:"last_updated"`
}

// StatsMap is keyed by club ID
type StatsMap map[string]ClubDistanceStats

type PlayerBagClub struct {
	ClubID          string   `json:"club_id"`
	Label           string   `json:"label"`
	Active          bool     `json:"active"`
	ManualAvgCarryM *float64 `json:"manual_avg_carry_m,omitempty"`
}

// PlayerBag keeps clubs in the order the player arranged them.
type PlayerBag struct {
	Clubs []PlayerBagClub `json:"clubs"`
}

func (b PlayerBag) ActiveClubs() []PlayerBagClub {
	active := make([]PlayerBagClub, 0, len(b.Clubs))
	for _, club := range b.Clubs {
		if club.Active {
			active = append(active, club)
		}
	}
	return active
}

// Hole carries the target geometry for one decision
type Hole struct {
	Number          int        `json:"number"`
	DistanceM       float64    `json:"distance_m"`
	HazardDistanceM *float64   `json:"hazard_distance_m,omitempty"`
	HazardSide      HazardSide `json:"hazard_side"`
}

// Decision is the engine output for one hole. It is built once and never
// mutated afterwards.
type Decision struct {
	HoleNumber                    int                `json:"hole_number"`
	Strategy                      Strategy           `json:"strategy"`
	TargetType                    TargetType         `json:"target_type"`
	TargetDistanceM               *float64           `json:"target_distance_m"`
	RawDistanceM                  float64            `json:"raw_distance_m"`
	RecommendedClubID             *string            `json:"recommended_club_id"`
	RecommendedClubDistanceSource DistanceSource     `json:"recommended_club_distance_source,omitempty"`
	RecommendedClubSampleCount    int                `json:"recommended_club_sample_count"`
	RecommendedClubMinSamples     int                `json:"recommended_club_min_samples"`
	RecommendedClubReadiness      ClubReadinessLevel `json:"recommended_club_readiness"`
	RecommendedClubCarryM         *float64           `json:"recommended_club_carry_m,omitempty"`
	RecommendedIntent             ShotIntent         `json:"recommended_intent,omitempty"`
	RiskScore                     *float64           `json:"risk_score,omitempty"`
	HazardSide                    HazardSide         `json:"hazard_side"`
	Reason                        DecisionReason     `json:"reason"`
	Explanation                   string             `json:"explanation"`
}

func (d Decision) HasRecommendation() bool {
	return d.RecommendedClubID != nil
}

func floatPtr(v float64) *float64 { return &v }

func stringPtr(v string) *string { return &v }
