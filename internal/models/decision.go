package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
)

// DecisionRecord is the persisted history of a caddie decision.
type DecisionRecord struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlayerID          string         `gorm:"not null;index" json:"player_id"`
	HoleNumber        int            `json:"hole_number"`
	Strategy          string         `gorm:"type:varchar(20);not null" json:"strategy"`
	TargetType        string         `gorm:"type:varchar(20);not null" json:"target_type"`
	TargetDistanceM   *float64       `json:"target_distance_m"`
	RawDistanceM      float64        `json:"raw_distance_m"`
	RecommendedClubID *string        `json:"recommended_club_id"`
	Reason            string         `gorm:"type:varchar(30)" json:"reason"`
	RiskPreference    string         `gorm:"type:varchar(20)" json:"risk_preference"`
	Explanation       string         `json:"explanation"`
	Factors           datatypes.JSON `json:"factors"`
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`
}

func (DecisionRecord) TableName() string {
	return "decision_records"
}

func (r *DecisionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewDecisionRecord stores the full decision under Factors so the history
// can be replayed without the engine.
func NewDecisionRecord(playerID string, pref caddie.RiskPreference, d caddie.Decision) (*DecisionRecord, error) {
	factors, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal decision factors: %w", err)
	}

	return &DecisionRecord{
		PlayerID:          playerID,
		HoleNumber:        d.HoleNumber,
		Strategy:          string(d.Strategy),
		TargetType:        string(d.TargetType),
		TargetDistanceM:   d.TargetDistanceM,
		RawDistanceM:      d.RawDistanceM,
		RecommendedClubID: d.RecommendedClubID,
		Reason:            string(d.Reason),
		RiskPreference:    string(pref),
		Explanation:       d.Explanation,
		Factors:           datatypes.JSON(factors),
	}, nil
}

// Decision decodes the stored factors back into the engine output.
func (r DecisionRecord) Decision() (caddie.Decision, error) {
	var d caddie.Decision
	if err := json.Unmarshal(r.Factors, &d); err != nil {
		return caddie.Decision{}, fmt.Errorf("failed to unmarshal decision factors: %w", err)
	}
	return d, nil
}

// AllModels lists every table managed by migrations.
func AllModels() []interface{} {
	return []interface{}{
		&BagClub{},
		&ShotSample{},
		&ShotShapeProfile{},
		&DecisionRecord{},
	}
}
