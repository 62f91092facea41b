package caddie

import (
	"fmt"
	"math"
	"sort"
)

const (
	LargeGapM   = 30.0
	MinSpacingM = 5.0
)

// Score penalties. The per-club ones scale with the share of the bag
// affected, spacing ones apply per occurrence.
const (
	noDataPenalty       = 40.0
	needsSamplesPenalty = 25.0
	largeGapPenalty     = 20.0
	overlapPenalty      = 10.0
)

type ReadinessGrade string

const (
	GradeExcellent ReadinessGrade = "excellent"
	GradeGood      ReadinessGrade = "good"
	GradeOkay      ReadinessGrade = "okay"
	GradePoor      ReadinessGrade = "poor"
)

type ReadinessSummary string

const (
	SummaryMissingData  ReadinessSummary = "missing_data"
	SummaryGapsPresent  ReadinessSummary = "gaps_present"
	SummaryNeedsSamples ReadinessSummary = "needs_samples"
	SummaryReady        ReadinessSummary = "ready"
)

type SuggestionSeverity int

const (
	SeverityLow SuggestionSeverity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s SuggestionSeverity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	}
	return "unknown"
}

func (s SuggestionSeverity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type SuggestionKind string

const (
	SuggestCalibrate     SuggestionKind = "calibrate"
	SuggestFillGap       SuggestionKind = "fill_gap"
	SuggestReduceOverlap SuggestionKind = "reduce_overlap"
)

type BagSuggestion struct {
	ID       string             `json:"id"`
	Kind     SuggestionKind     `json:"kind"`
	Severity SuggestionSeverity `json:"severity"`
	Clubs    []string           `json:"clubs"`
	GapM     float64            `json:"gap_m,omitempty"`
}

type ClubReadinessEntry struct {
	ClubID          string             `json:"club_id"`
	Source          DistanceSource     `json:"source"`
	Readiness       ClubReadinessLevel `json:"readiness"`
	SampleCount     int                `json:"sample_count"`
	EffectiveCarryM *float64           `json:"effective_carry_m,omitempty"`
}

// BagReadiness scores how well a bag is calibrated and spaced.
type BagReadiness struct {
	Score                 int                  `json:"score"`
	Grade                 ReadinessGrade       `json:"grade"`
	Summary               ReadinessSummary     `json:"summary"`
	TotalClubs            int                  `json:"total_clubs"`
	CalibratedClubs       int                  `json:"calibrated_clubs"`
	NeedsMoreSamplesCount int                  `json:"needs_more_samples_count"`
	NoDataCount           int                  `json:"no_data_count"`
	LargeGapCount         int                  `json:"large_gap_count"`
	OverlapCount          int                  `json:"overlap_count"`
	Clubs                 []ClubReadinessEntry `json:"clubs"`
	Suggestions           []BagSuggestion      `json:"suggestions"`
}

// TopSuggestion returns the highest priority suggestion, if any.
func (r BagReadiness) TopSuggestion() (BagSuggestion, bool) {
	if len(r.Suggestions) == 0 {
		return BagSuggestion{}, false
	}
	return r.Suggestions[0], true
}

// ClubReadiness looks up one club's level; false for clubs not in the bag.
func (r BagReadiness) ClubReadiness(clubID string) (ClubReadinessLevel, bool) {
	for _, c := range r.Clubs {
		if c.ClubID == clubID {
			return c.Readiness, true
		}
	}
	return ReadinessUnready, false
}

// ComputeBagReadiness grades the active clubs of a bag. ok is false for a
// bag with no active clubs.
func ComputeBagReadiness(bag PlayerBag, stats StatsMap, defaults DefaultCarryTable, minSamples int) (BagReadiness, bool) {
	if minSamples <= 0 {
		minSamples = DefaultMinAutocalibratedSamples
	}
	active := bag.ActiveClubs()
	if len(active) == 0 {
		return BagReadiness{}, false
	}

	r := BagReadiness{TotalClubs: len(active)}
	type carried struct {
		id    string
		carry float64
	}
	spaced := make([]carried, 0, len(active))
	var suggestions []BagSuggestion

	for _, club := range active {
		var st *ClubDistanceStats
		if s, ok := stats[club.ClubID]; ok {
			st = &s
		}
		cal := Calibrate(club.ClubID, st, club.ManualAvgCarryM, defaults, minSamples)
		entry := ClubReadinessEntry{
			ClubID:      club.ClubID,
			Source:      cal.Source,
			Readiness:   ClassifyReadiness(cal.Source, cal.SampleCount, minSamples),
			SampleCount: cal.SampleCount,
		}
		if cal.OK {
			entry.EffectiveCarryM = floatPtr(cal.EffectiveCarryM)
			spaced = append(spaced, carried{id: club.ClubID, carry: cal.EffectiveCarryM})
		}
		r.Clubs = append(r.Clubs, entry)

		switch cal.Source {
		case SourceAutoCalibrated, SourceManual:
			r.CalibratedClubs++
		case SourcePartialStats:
			r.NeedsMoreSamplesCount++
			suggestions = append(suggestions, BagSuggestion{
				ID:       fmt.Sprintf("%s:%s", SuggestCalibrate, club.ClubID),
				Kind:     SuggestCalibrate,
				Severity: SeverityLow,
				Clubs:    []string{club.ClubID},
			})
		case SourceDefault:
			r.NoDataCount++
			suggestions = append(suggestions, BagSuggestion{
				ID:       fmt.Sprintf("%s:%s", SuggestCalibrate, club.ClubID),
				Kind:     SuggestCalibrate,
				Severity: SeverityHigh,
				Clubs:    []string{club.ClubID},
			})
		}
	}

	sort.SliceStable(spaced, func(i, j int) bool {
		if spaced[i].carry != spaced[j].carry {
			return spaced[i].carry < spaced[j].carry
		}
		return spaced[i].id < spaced[j].id
	})
	for i := 1; i < len(spaced); i++ {
		short, long := spaced[i-1], spaced[i]
		gap := long.carry - short.carry
		switch {
		case gap > LargeGapM:
			r.LargeGapCount++
			suggestions = append(suggestions, BagSuggestion{
				ID:       fmt.Sprintf("%s:%s:%s", SuggestFillGap, short.id, long.id),
				Kind:     SuggestFillGap,
				Severity: SeverityMedium,
				Clubs:    []string{short.id, long.id},
				GapM:     gap,
			})
		case gap < MinSpacingM:
			r.OverlapCount++
			suggestions = append(suggestions, BagSuggestion{
				ID:       fmt.Sprintf("%s:%s:%s", SuggestReduceOverlap, short.id, long.id),
				Kind:     SuggestReduceOverlap,
				Severity: SeverityHigh,
				Clubs:    []string{short.id, long.id},
				GapM:     gap,
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Severity != suggestions[j].Severity {
			return suggestions[i].Severity > suggestions[j].Severity
		}
		if suggestions[i].Kind != suggestions[j].Kind {
			return suggestionOrder(suggestions[i].Kind) < suggestionOrder(suggestions[j].Kind)
		}
		return suggestions[i].ID < suggestions[j].ID
	})
	r.Suggestions = suggestions
	if r.Suggestions == nil {
		r.Suggestions = []BagSuggestion{}
	}

	total := float64(r.TotalClubs)
	score := 100 -
		noDataPenalty*float64(r.NoDataCount)/total -
		needsSamplesPenalty*float64(r.NeedsMoreSamplesCount)/total -
		largeGapPenalty*float64(r.LargeGapCount) -
		overlapPenalty*float64(r.OverlapCount)
	r.Score = int(math.Round(math.Max(0, math.Min(100, score))))
	r.Grade = gradeFor(r.Score)
	r.Summary = summaryFor(r)
	return r, true
}

// reduce_overlap sorts ahead of calibrate, which sorts ahead of fill_gap
func suggestionOrder(k SuggestionKind) int {
	switch k {
	case SuggestReduceOverlap:
		return 0
	case SuggestCalibrate:
		return 1
	case SuggestFillGap:
		return 2
	}
	return 3
}

func gradeFor(score int) ReadinessGrade {
	switch {
	case score >= 85:
		return GradeExcellent
	case score >= 70:
		return GradeGood
	case score >= 50:
		return GradeOkay
	default:
		return GradePoor
	}
}

func summaryFor(r BagReadiness) ReadinessSummary {
	switch {
	case r.NoDataCount > 0:
		return SummaryMissingData
	case r.LargeGapCount > 0 || r.OverlapCount > 0:
		return SummaryGapsPresent
	case r.NeedsMoreSamplesCount > 0:
		return SummaryNeedsSamples
	default:
		return SummaryReady
	}
}
