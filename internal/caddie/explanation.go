package caddie

import (
	"fmt"
	"strings"
)

// BuildExplanation renders the rationale from decision fields only, so the
// same Decision always yields the same text.
func BuildExplanation(d Decision) string {
	switch d.Reason {
	case ReasonOnTarget:
		return "On target: no club needed."
	case ReasonNoActiveClubs:
		return "No active clubs are configured in your bag."
	case ReasonNoCandidate:
		return fmt.Sprintf("No club in your bag has a usable carry distance for %s.", meters(d.RawDistanceM))
	}

	if !d.HasRecommendation() {
		return fmt.Sprintf("No safe layup distance could be found short of the trouble at %s.", meters(d.RawDistanceM))
	}
	club := *d.RecommendedClubID
	if d.RecommendedIntent != "" && d.RecommendedIntent != IntentStraight {
		club = fmt.Sprintf("%s (%s)", club, d.RecommendedIntent)
	}

	parts := make([]string, 0, 3)
	switch d.Strategy {
	case StrategyAttack:
		parts = append(parts, fmt.Sprintf("Attack the green at %s with %s.", meters(d.RawDistanceM), club))
	case StrategyLayup:
		target := d.RawDistanceM
		if d.TargetDistanceM != nil {
			target = *d.TargetDistanceM
		}
		switch d.Reason {
		case ReasonOutOfRange:
			parts = append(parts, fmt.Sprintf("Lay up to %s with %s: %s is beyond your longest carry.", meters(target), club, meters(d.RawDistanceM)))
		case ReasonRiskCeiling:
			parts = append(parts, fmt.Sprintf("Lay up to %s with %s: attacking %s carries too much miss risk.", meters(target), club, meters(d.RawDistanceM)))
		default:
			parts = append(parts, fmt.Sprintf("Lay up to %s with %s.", meters(target), club))
		}
	}

	parts = append(parts, calibrationNote(d))
	if note := hazardNote(d); note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, " ")
}

func calibrationNote(d Decision) string {
	switch d.RecommendedClubDistanceSource {
	case SourceAutoCalibrated:
		return fmt.Sprintf("Carry calibrated from %d of your shots.", d.RecommendedClubSampleCount)
	case SourcePartialStats:
		return fmt.Sprintf("Low confidence: %d/%d shots recorded to calibrate this club.", d.RecommendedClubSampleCount, d.RecommendedClubMinSamples)
	case SourceManual:
		return "Carry taken from your manual setting."
	case SourceDefault:
		return "Low confidence: no shot data yet, using a typical carry distance."
	}
	return ""
}

func hazardNote(d Decision) string {
	if d.RiskScore == nil {
		return ""
	}
	switch d.HazardSide {
	case HazardLeft:
		return "Favor the right side, away from the hazard on the left."
	case HazardRight:
		return "Favor the left side, away from the hazard on the right."
	case HazardNone:
	}
	return ""
}

func meters(v float64) string {
	return fmt.Sprintf("%.0f m", v)
}
