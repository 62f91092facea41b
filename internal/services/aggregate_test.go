package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimOutliers(t *testing.T) {
	tests := []struct {
		name     string
		carries  []float64
		expected []float64
	}{
		{
			name:     "too few samples are untouched",
			carries:  []float64{140, 141, 300},
			expected: []float64{140, 141, 300},
		},
		{
			name:     "single mishit is dropped",
			carries:  []float64{140, 142, 138, 141, 139, 60},
			expected: []float64{140, 142, 138, 141, 139},
		},
		{
			name:     "identical carries have zero spread",
			carries:  []float64{150, 150, 150, 150, 150, 90},
			expected: []float64{150, 150, 150, 150, 150, 90},
		},
		{
			name:     "tight group keeps everything",
			carries:  []float64{120, 125, 130, 122, 128},
			expected: []float64{120, 125, 130, 122, 128},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TrimOutliers(tt.carries))
		})
	}
}

func TestAggregateCarries(t *testing.T) {
	at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	stats := AggregateCarries("7i", []float64{150, 160, 170}, at)
	assert.Equal(t, "7i", stats.Club)
	assert.Equal(t, 3, stats.Samples)
	assert.InDelta(t, 160.0, stats.BaselineCarryM, 1e-9)
	require.NotNil(t, stats.CarryStdM)
	assert.InDelta(t, 10.0, *stats.CarryStdM, 1e-9)
	assert.Equal(t, at, stats.LastUpdated)
}

func TestAggregateCarriesEdgeCases(t *testing.T) {
	at := time.Now().UTC()

	empty := AggregateCarries("pw", nil, at)
	assert.Equal(t, 0, empty.Samples)
	assert.Nil(t, empty.CarryStdM)

	single := AggregateCarries("pw", []float64{110}, at)
	assert.Equal(t, 1, single.Samples)
	assert.Equal(t, 110.0, single.BaselineCarryM)
	assert.Nil(t, single.CarryStdM)

	trimmed := AggregateCarries("8i", []float64{130, 131, 129, 130, 132, 40}, at)
	assert.Equal(t, 5, trimmed.Samples)
	assert.InDelta(t, 130.4, trimmed.BaselineCarryM, 1e-9)
}
