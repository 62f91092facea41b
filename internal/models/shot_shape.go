package models

import (
	"time"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
)

// PopulationPlayerID marks profiles shared by every player.
const PopulationPlayerID = ""

// ShotShapeProfile is the stored dispersion model for one club and intent.
// Player rows take precedence over population rows.
type ShotShapeProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	PlayerID       string    `gorm:"uniqueIndex:idx_profile_key" json:"player_id"`
	ClubID         string    `gorm:"not null;uniqueIndex:idx_profile_key" json:"club_id"`
	Intent         string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_profile_key" json:"intent"`
	CoreCarryMeanM float64   `json:"core_carry_mean_m"`
	CoreCarryStdM  float64   `json:"core_carry_std_m"`
	CoreSideMeanM  float64   `json:"core_side_mean_m"`
	CoreSideStdM   float64   `json:"core_side_std_m"`
	TailLeftProb   float64   `json:"tail_left_prob"`
	TailRightProb  float64   `json:"tail_right_prob"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (ShotShapeProfile) TableName() string {
	return "shot_shape_profiles"
}

func (p ShotShapeProfile) ToProfile() caddie.ShotShapeProfile {
	return caddie.ShotShapeProfile{
		Club:           p.ClubID,
		Intent:         caddie.ShotIntent(p.Intent),
		CoreCarryMeanM: p.CoreCarryMeanM,
		CoreCarryStdM:  p.CoreCarryStdM,
		CoreSideMeanM:  p.CoreSideMeanM,
		CoreSideStdM:   p.CoreSideStdM,
		TailLeftProb:   p.TailLeftProb,
		TailRightProb:  p.TailRightProb,
	}
}

func NewShotShapeProfile(playerID string, p caddie.ShotShapeProfile) ShotShapeProfile {
	return ShotShapeProfile{
		PlayerID:       playerID,
		ClubID:         p.Club,
		Intent:         string(p.Intent),
		CoreCarryMeanM: p.CoreCarryMeanM,
		CoreCarryStdM:  p.CoreCarryStdM,
		CoreSideMeanM:  p.CoreSideMeanM,
		CoreSideStdM:   p.CoreSideStdM,
		TailLeftProb:   p.TailLeftProb,
		TailRightProb:  p.TailRightProb,
	}
}
