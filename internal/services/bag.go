package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/models"
	"github.com/stitts-dev/golf-caddie/pkg/database"
	"github.com/stitts-dev/golf-caddie/pkg/logger"
	"github.com/stitts-dev/golf-caddie/pkg/utils"
)

// ClubUpdate changes one club of a bag. Nil fields are left alone.
type ClubUpdate struct {
	ClubID          string   `json:"club_id" binding:"required"`
	Label           *string  `json:"label,omitempty"`
	Active          *bool    `json:"active,omitempty"`
	ManualAvgCarryM *float64 `json:"manual_avg_carry_m,omitempty"`
	ClearManual     bool     `json:"clear_manual,omitempty"`
}

// BagService owns the player's bag and the running shot aggregates.
type BagService struct {
	db     *database.DB
	cache  Cache
	clock  Clock
	logger *logrus.Logger
}

func NewBagService(db *database.DB, cache Cache, clock Clock, logger *logrus.Logger) *BagService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BagService{
		db:     db,
		cache:  cache,
		clock:  clock,
		logger: logger,
	}
}

// GetBag returns the bag in player order, creating the default bag on first
// access.
func (s *BagService) GetBag(ctx context.Context, playerID string) ([]models.BagClub, error) {
	var clubs []models.BagClub
	if err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("position ASC").
		Find(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to load bag: %w", err)
	}
	if len(clubs) > 0 {
		return clubs, nil
	}

	clubs = models.NewDefaultBag(playerID)
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to create default bag: %w", err)
	}

	s.logger.WithField("player_id", playerID).Info("Created default bag")
	return s.reload(ctx, playerID)
}

// PlayerBag returns the bag in the shape the engine reads.
func (s *BagService) PlayerBag(ctx context.Context, playerID string) (caddie.PlayerBag, error) {
	clubs, err := s.GetBag(ctx, playerID)
	if err != nil {
		return caddie.PlayerBag{}, err
	}
	return toPlayerBag(clubs), nil
}

// LoadClubStats reads the stored aggregates for one club. It returns nil
// without error when the club has no shots.
func (s *BagService) LoadClubStats(ctx context.Context, playerID, clubID string) (*caddie.ClubDistanceStats, error) {
	var club models.BagClub
	err := s.db.WithContext(ctx).
		Where("player_id = ? AND club_id = ?", playerID, clubID).
		First(&club).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats for %s: %w", clubID, err)
	}
	return club.DistanceStats(), nil
}

func (s *BagService) UpdateClubs(ctx context.Context, playerID string, updates []ClubUpdate) ([]models.BagClub, error) {
	if _, err := s.GetBag(ctx, playerID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			var club models.BagClub
			err := tx.Where("player_id = ? AND club_id = ?", playerID, update.ClubID).First(&club).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NewAppError(utils.ErrCodeUnknownClub, "club is not in the bag", update.ClubID)
			}
			if err != nil {
				return err
			}

			if update.Label != nil {
				label := strings.TrimSpace(*update.Label)
				if label == "" {
					return utils.NewAppError(utils.ErrCodeValidation, "label must not be empty", update.ClubID)
				}
				club.Label = label
			}
			if update.Active != nil {
				club.Active = *update.Active
			}
			if update.ClearManual {
				club.ManualAvgCarryM = nil
			} else if update.ManualAvgCarryM != nil {
				carry := *update.ManualAvgCarryM
				if carry <= 0 || math.IsNaN(carry) || math.IsInf(carry, 0) {
					return utils.NewAppError(utils.ErrCodeValidation, "manual carry must be positive", update.ClubID)
				}
				club.ManualAvgCarryM = &carry
			}

			if err := tx.Save(&club).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to update clubs: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"updates":   len(updates),
	}).Info("Updated bag clubs")

	return s.reload(ctx, playerID)
}

// RecordShot stores the raw carry and folds it into the club's running
// aggregates. The cached stats for the club are invalidated.
func (s *BagService) RecordShot(ctx context.Context, playerID, clubID string, carryM float64) (*models.BagClub, error) {
	if carryM <= 0 || math.IsNaN(carryM) || math.IsInf(carryM, 0) {
		return nil, utils.NewAppError(utils.ErrCodeValidation, "carry must be a positive distance")
	}
	if _, err := s.GetBag(ctx, playerID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var club models.BagClub
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("player_id = ? AND club_id = ?", playerID, clubID).First(&club).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewAppError(utils.ErrCodeUnknownClub, "club is not in the bag", clubID)
		}
		if err != nil {
			return err
		}

		sample := models.ShotSample{
			PlayerID:   playerID,
			ClubID:     clubID,
			CarryM:     carryM,
			RecordedAt: now,
		}
		if err := tx.Create(&sample).Error; err != nil {
			return err
		}

		club.AddSample(carryM, now)
		return tx.Save(&club).Error
	})
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to record shot: %w", err)
	}

	s.invalidateStats(ctx, playerID, clubID)

	logger.WithPlayerContext(playerID, clubID).WithFields(logrus.Fields{
		"carry_m":      carryM,
		"sample_count": club.SampleCount,
	}).Debug("Recorded shot")

	return &club, nil
}

// Readiness scores the bag as a whole.
func (s *BagService) Readiness(ctx context.Context, playerID string, defaults caddie.DefaultCarryTable, minSamples int) (caddie.BagReadiness, bool, error) {
	clubs, err := s.GetBag(ctx, playerID)
	if err != nil {
		return caddie.BagReadiness{}, false, err
	}
	readiness, ok := caddie.ComputeBagReadiness(toPlayerBag(clubs), statsFromClubs(clubs), defaults, minSamples)
	return readiness, ok, nil
}

func (s *BagService) reload(ctx context.Context, playerID string) ([]models.BagClub, error) {
	var clubs []models.BagClub
	if err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("position ASC").
		Find(&clubs).Error; err != nil {
		return nil, fmt.Errorf("failed to load bag: %w", err)
	}
	return clubs, nil
}

func (s *BagService) invalidateStats(ctx context.Context, playerID string, clubIDs ...string) {
	if s.cache == nil || len(clubIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(clubIDs))
	for _, clubID := range clubIDs {
		keys = append(keys, DistanceStatsCacheKey(playerID, clubID))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WithError(err).WithField("player_id", playerID).Warn("Failed to invalidate cached stats")
	}
}

func toPlayerBag(clubs []models.BagClub) caddie.PlayerBag {
	bag := caddie.PlayerBag{Clubs: make([]caddie.PlayerBagClub, 0, len(clubs))}
	for _, club := range clubs {
		bag.Clubs = append(bag.Clubs, club.ToBagClub())
	}
	return bag
}

func statsFromClubs(clubs []models.BagClub) caddie.StatsMap {
	stats := make(caddie.StatsMap, len(clubs))
	for _, club := range clubs {
		if st := club.DistanceStats(); st != nil {
			stats[club.ClubID] = *st
		}
	}
	return stats
}
