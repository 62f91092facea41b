package caddie

import (
	"fmt"
	"strings"
)

const DefaultMinAutocalibratedSamples = 10

// RiskPreference selects a preset of layup buffer and risk ceiling
type RiskPreference string

const (
	RiskSafe       RiskPreference = "safe"
	RiskBalanced   RiskPreference = "balanced"
	RiskAggressive RiskPreference = "aggressive"
)

// ParseRiskPreference accepts "normal" as an alias for balanced and treats an
// empty value as balanced.
func ParseRiskPreference(s string) (RiskPreference, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "balanced", "normal":
		return RiskBalanced, nil
	case "safe":
		return RiskSafe, nil
	case "aggressive":
		return RiskAggressive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRiskPreference, s)
}

// Config holds the tunable thresholds of the decision engine.
type Config struct {
	// MinAutocalibratedSamples is the sample count at which a club's own
	// data is trusted without qualification.
	MinAutocalibratedSamples int
	// RiskCeiling is the highest attack risk score that still allows attack.
	RiskCeiling float64
	// LayupBufferM is how far short of the hazard or green a layup lands.
	LayupBufferM float64
	// CarryGapMarginM is the shortfall no club is expected to cover.
	CarryGapMarginM float64
	// DispersionWeight scales coreCarryStd / remaining distance.
	DispersionWeight float64
	// HazardSideWeight multiplies the tail probability toward the hazard.
	HazardSideWeight float64
	// UnknownProfilePenaltyM is added to the match distance of clubs with no
	// shot shape profile when other candidates have one.
	UnknownProfilePenaltyM float64
}

func DefaultConfig() Config {
	return PresetConfig(RiskBalanced)
}

// PresetConfig returns the thresholds for a risk preference.
func PresetConfig(pref RiskPreference) Config {
	cfg := Config{
		MinAutocalibratedSamples: DefaultMinAutocalibratedSamples,
		CarryGapMarginM:          10,
		DispersionWeight:         0.5,
		HazardSideWeight:         2,
		UnknownProfilePenaltyM:   5,
	}
	switch pref {
	case RiskSafe:
		cfg.LayupBufferM = 15
		cfg.RiskCeiling = 0.15
	case RiskAggressive:
		cfg.LayupBufferM = 5
		cfg.RiskCeiling = 0.40
	default:
		cfg.LayupBufferM = 10
		cfg.RiskCeiling = 0.25
	}
	return cfg
}

// WithPreference swaps the preset-controlled fields and keeps the rest.
func (c Config) WithPreference(pref RiskPreference) Config {
	preset := PresetConfig(pref)
	c.LayupBufferM = preset.LayupBufferM
	c.RiskCeiling = preset.RiskCeiling
	return c
}

func (c Config) minSamples() int {
	if c.MinAutocalibratedSamples <= 0 {
		return DefaultMinAutocalibratedSamples
	}
	return c.MinAutocalibratedSamples
}
