package models

import (
	"math"
	"time"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
)

// BagClub is one club in a player's bag together with its running distance
// aggregates. Sums are kept so a new shot updates the stats in O(1).
type BagClub struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	PlayerID        string     `gorm:"not null;uniqueIndex:idx_player_club" json:"player_id"`
	ClubID          string     `gorm:"not null;uniqueIndex:idx_player_club" json:"club_id"`
	Label           string     `gorm:"not null" json:"label"`
	Position        int        `gorm:"not null" json:"position"`
	Active          bool       `json:"active"`
	ManualAvgCarryM *float64   `json:"manual_avg_carry_m,omitempty"`
	SampleCount     int        `gorm:"not null" json:"sample_count"`
	SumCarryM       float64    `json:"-"`
	SumSqCarryM     float64    `json:"-"`
	AvgCarryM       *float64   `json:"avg_carry_m,omitempty"`
	StdDevM         *float64   `json:"std_dev_m,omitempty"`
	LastUpdated     *time.Time `json:"last_updated,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (BagClub) TableName() string {
	return "bag_clubs"
}

// AddSample folds one carry into the running aggregates.
func (c *BagClub) AddSample(carryM float64, at time.Time) {
	c.SampleCount++
	c.SumCarryM += carryM
	c.SumSqCarryM += carryM * carryM
	c.refresh(at)
}

// ApplyStats replaces the aggregates with recomputed stats and rebuilds the
// running sums so later samples keep folding in.
func (c *BagClub) ApplyStats(stats caddie.ClubDistanceStats) {
	n := float64(stats.Samples)
	c.SampleCount = stats.Samples
	c.SumCarryM = n * stats.BaselineCarryM
	c.SumSqCarryM = n * stats.BaselineCarryM * stats.BaselineCarryM
	if stats.CarryStdM != nil && stats.Samples > 1 {
		c.SumSqCarryM += (n - 1) * *stats.CarryStdM * *stats.CarryStdM
	}
	c.refresh(stats.LastUpdated)
}

func (c *BagClub) refresh(at time.Time) {
	c.LastUpdated = &at
	if c.SampleCount == 0 {
		c.AvgCarryM = nil
		c.StdDevM = nil
		return
	}

	n := float64(c.SampleCount)
	mean := c.SumCarryM / n
	c.AvgCarryM = &mean

	if c.SampleCount < 2 {
		c.StdDevM = nil
		return
	}
	variance := (c.SumSqCarryM - c.SumCarryM*c.SumCarryM/n) / (n - 1)
	std := math.Sqrt(math.Max(variance, 0))
	c.StdDevM = &std
}

func (c BagClub) ToBagClub() caddie.PlayerBagClub {
	return caddie.PlayerBagClub{
		ClubID:          c.ClubID,
		Label:           c.Label,
		Active:          c.Active,
		ManualAvgCarryM: c.ManualAvgCarryM,
	}
}

// DistanceStats returns nil when the club has no recorded shots.
func (c BagClub) DistanceStats() *caddie.ClubDistanceStats {
	if c.SampleCount == 0 || c.AvgCarryM == nil {
		return nil
	}
	stats := &caddie.ClubDistanceStats{
		Club:           c.ClubID,
		Samples:        c.SampleCount,
		BaselineCarryM: *c.AvgCarryM,
		CarryStdM:      c.StdDevM,
	}
	if c.LastUpdated != nil {
		stats.LastUpdated = *c.LastUpdated
	}
	return stats
}

// ShotSample is one recorded carry, kept so stats can be recomputed.
type ShotSample struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PlayerID   string    `gorm:"not null;index:idx_shot_player_club" json:"player_id"`
	ClubID     string    `gorm:"not null;index:idx_shot_player_club" json:"club_id"`
	CarryM     float64   `gorm:"not null" json:"carry_m"`
	RecordedAt time.Time `gorm:"not null;index" json:"recorded_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ShotSample) TableName() string {
	return "shot_samples"
}

// DefaultBagClub describes one slot of the starter bag.
type DefaultBagClub struct {
	ClubID string
	Label  string
}

// DefaultBag is the 13-club bag a new player starts with.
var DefaultBag = []DefaultBagClub{
	{ClubID: "driver", Label: "Driver"},
	{ClubID: "3w", Label: "3 Wood"},
	{ClubID: "5w", Label: "5 Wood"},
	{ClubID: "4h", Label: "4 Hybrid"},
	{ClubID: "5i", Label: "5 Iron"},
	{ClubID: "6i", Label: "6 Iron"},
	{ClubID: "7i", Label: "7 Iron"},
	{ClubID: "8i", Label: "8 Iron"},
	{ClubID: "9i", Label: "9 Iron"},
	{ClubID: "pw", Label: "Pitching Wedge"},
	{ClubID: "gw", Label: "Gap Wedge"},
	{ClubID: "sw", Label: "Sand Wedge"},
	{ClubID: "lw", Label: "Lob Wedge"},
}

func NewDefaultBag(playerID string) []BagClub {
	clubs := make([]BagClub, 0, len(DefaultBag))
	for i, slot := range DefaultBag {
		clubs = append(clubs, BagClub{
			PlayerID: playerID,
			ClubID:   slot.ClubID,
			Label:    slot.Label,
			Position: i,
			Active:   true,
		})
	}
	return clubs
}
