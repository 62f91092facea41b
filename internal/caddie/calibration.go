package caddie

import "math"

// DefaultCarryTable supplies generic carry distances for clubs with no
// player data.
type DefaultCarryTable interface {
	DefaultCarryM(clubID string) (float64, bool)
}

// GenericCarryTable is a static mid-handicap distance table in meters.
type GenericCarryTable map[string]float64

func (t GenericCarryTable) DefaultCarryM(clubID string) (float64, bool) {
	v, ok := t[clubID]
	return v, ok
}

// StandardCarryTable covers the standard 14-club set.
var StandardCarryTable = GenericCarryTable{
	"driver": 210,
	"3w":     195,
	"5w":     180,
	"4h":     170,
	"4i":     165,
	"5i":     160,
	"6i":     150,
	"7i":     140,
	"8i":     130,
	"9i":     120,
	"pw":     110,
	"gw":     95,
	"sw":     80,
	"lw":     65,
}

// Calibration is the calibrated carry estimate for one club.
type Calibration struct {
	ClubID          string
	EffectiveCarryM float64
	Source          DistanceSource
	SampleCount     int
	// OK is false when no usable carry could be derived, e.g. a club that
	// appears neither in the player's stats nor in the default table.
	OK bool
}

// Calibrate picks the carry estimate for a club:
//
//	manual override > no samples (default table) > partial stats > auto calibrated
func Calibrate(clubID string, stats *ClubDistanceStats, manualOverride *float64, defaults DefaultCarryTable, minSamples int) Calibration {
	if minSamples <= 0 {
		minSamples = DefaultMinAutocalibratedSamples
	}

	samples := 0
	if stats != nil && stats.Samples > 0 {
		samples = stats.Samples
	}

	if manualOverride != nil {
		return Calibration{
			ClubID:          clubID,
			EffectiveCarryM: *manualOverride,
			Source:          SourceManual,
			SampleCount:     samples,
			OK:              usableCarry(*manualOverride),
		}
	}

	if samples == 0 {
		cal := Calibration{ClubID: clubID, Source: SourceDefault}
		if defaults != nil {
			if carry, ok := defaults.DefaultCarryM(clubID); ok {
				cal.EffectiveCarryM = carry
				cal.OK = usableCarry(carry)
			}
		}
		return cal
	}

	source := SourceAutoCalibrated
	if samples < minSamples {
		source = SourcePartialStats
	}
	return Calibration{
		ClubID:          clubID,
		EffectiveCarryM: stats.BaselineCarryM,
		Source:          source,
		SampleCount:     samples,
		OK:              usableCarry(stats.BaselineCarryM),
	}
}

func usableCarry(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
