package services

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
)

const (
	// minSamplesForTrim is the smallest sample set outliers are removed from.
	minSamplesForTrim = 5
	outlierMADFactor  = 3.0
)

// TrimOutliers drops carries further than 3·MAD from the median. Sets
// smaller than five, or with zero spread, are returned unchanged.
func TrimOutliers(carries []float64) []float64 {
	if len(carries) < minSamplesForTrim {
		return carries
	}

	sorted := append([]float64(nil), carries...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)

	deviations := make([]float64, len(sorted))
	for i, v := range sorted {
		deviations[i] = math.Abs(v - median)
	}
	sort.Float64s(deviations)
	mad := stat.Quantile(0.5, stat.Empirical, deviations, nil)
	if mad == 0 {
		return carries
	}

	kept := make([]float64, 0, len(carries))
	for _, v := range carries {
		if math.Abs(v-median) <= outlierMADFactor*mad {
			kept = append(kept, v)
		}
	}
	return kept
}

// AggregateCarries turns raw carries into club stats. The deviation is the
// sample deviation and is nil below two samples.
func AggregateCarries(clubID string, carries []float64, lastUpdated time.Time) caddie.ClubDistanceStats {
	kept := TrimOutliers(carries)
	stats := caddie.ClubDistanceStats{
		Club:        clubID,
		Samples:     len(kept),
		LastUpdated: lastUpdated,
	}
	if len(kept) == 0 {
		return stats
	}

	stats.BaselineCarryM = stat.Mean(kept, nil)
	if len(kept) > 1 {
		std := stat.StdDev(kept, nil)
		stats.CarryStdM = &std
	}
	return stats
}
