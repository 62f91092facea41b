package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/models"
	"github.com/stitts-dev/golf-caddie/pkg/database"
	"github.com/stitts-dev/golf-caddie/pkg/utils"
)

// ShotShapeService supplies dispersion profiles. Player profiles replace
// population profiles for the same club and intent.
type ShotShapeService struct {
	db      *database.DB
	cache   Cache
	breaker *CircuitBreakerService
	ttl     time.Duration
	logger  *logrus.Logger
}

func NewShotShapeService(db *database.DB, cache Cache, breaker *CircuitBreakerService, ttl time.Duration, logger *logrus.Logger) *ShotShapeService {
	return &ShotShapeService{
		db:      db,
		cache:   cache,
		breaker: breaker,
		ttl:     ttl,
		logger:  logger,
	}
}

func (s *ShotShapeService) ProfilesFor(ctx context.Context, playerID string) (*caddie.ProfileSet, error) {
	key := ShotShapeCacheKey(playerID)

	if s.cache != nil {
		var cached []caddie.ShotShapeProfile
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return caddie.NewProfileSet(cached...), nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			s.logger.WithError(err).WithField("player_id", playerID).Warn("Profile cache read failed")
		}
	}

	result, err := s.breaker.Execute(BreakerShotShape, func() (interface{}, error) {
		return s.loadProfiles(ctx, playerID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load shot shape profiles: %w", err)
	}
	profiles := result.([]caddie.ShotShapeProfile)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profiles, s.ttl); err != nil {
			s.logger.WithError(err).WithField("player_id", playerID).Warn("Failed to cache shot shape profiles")
		}
	}

	return caddie.NewProfileSet(profiles...), nil
}

// loadProfiles returns population rows first so player rows override them
// when added to a ProfileSet in order.
func (s *ShotShapeService) loadProfiles(ctx context.Context, playerID string) ([]caddie.ShotShapeProfile, error) {
	var rows []models.ShotShapeProfile
	if err := s.db.WithContext(ctx).
		Where("player_id IN ?", []string{models.PopulationPlayerID, playerID}).
		Order("player_id ASC, club_id ASC, intent ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	byKey := make(map[string]int, len(rows))
	profiles := make([]caddie.ShotShapeProfile, 0, len(rows))
	for _, row := range rows {
		profile := row.ToProfile()
		if err := profile.Validate(); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"player_id": row.PlayerID,
				"club_id":   row.ClubID,
				"intent":    row.Intent,
			}).Warn("Skipping invalid shot shape profile")
			continue
		}
		k := row.ClubID + "/" + row.Intent
		if i, ok := byKey[k]; ok {
			if row.PlayerID != models.PopulationPlayerID {
				profiles[i] = profile
			}
			continue
		}
		byKey[k] = len(profiles)
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// SaveProfile validates and upserts a profile, then drops the cached set.
// An empty playerID stores a population profile.
func (s *ShotShapeService) SaveProfile(ctx context.Context, playerID string, profile caddie.ShotShapeProfile) error {
	if err := profile.Validate(); err != nil {
		return utils.NewAppError(utils.ErrCodeInvalidProfile, "invalid shot shape profile", err.Error())
	}

	row := models.NewShotShapeProfile(playerID, profile)
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "club_id"}, {Name: "intent"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"core_carry_mean_m", "core_carry_std_m", "core_side_mean_m",
			"core_side_std_m", "tail_left_prob", "tail_right_prob", "updated_at",
		}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save shot shape profile: %w", err)
	}

	if s.cache != nil {
		// Population rows are merged into every player's cached set.
		var err error
		if playerID == models.PopulationPlayerID {
			err = s.cache.DeletePattern(ctx, AllShotShapeCacheKeys)
		} else {
			err = s.cache.Delete(ctx, ShotShapeCacheKey(playerID))
		}
		if err != nil {
			s.logger.WithError(err).WithField("player_id", playerID).Warn("Failed to invalidate profile cache")
		}
	}
	return nil
}

// SeedPopulation stores the default population profiles.
func (s *ShotShapeService) SeedPopulation(ctx context.Context) (int, error) {
	profiles := PopulationProfiles(caddie.StandardCarryTable)
	for _, profile := range profiles {
		if err := s.SaveProfile(ctx, models.PopulationPlayerID, profile); err != nil {
			return 0, err
		}
	}
	s.logger.WithField("profiles", len(profiles)).Info("Seeded population shot shape profiles")
	return len(profiles), nil
}

// PopulationProfiles derives typical amateur dispersion from carry distance.
// Longer clubs spread wider and miss the tails more often.
func PopulationProfiles(table caddie.GenericCarryTable) []caddie.ShotShapeProfile {
	clubs := make([]string, 0, len(table))
	for club := range table {
		clubs = append(clubs, club)
	}
	sort.Strings(clubs)

	shapes := []struct {
		intent   caddie.ShotIntent
		sideMean float64
		left     float64
		right    float64
	}{
		{caddie.IntentStraight, 0, 0.03, 0.03},
		{caddie.IntentDraw, -3, 0.05, 0.01},
		{caddie.IntentFade, 3, 0.01, 0.05},
	}

	profiles := make([]caddie.ShotShapeProfile, 0, len(clubs)*len(shapes))
	for _, club := range clubs {
		carry := table[club]
		scale := carry / 160
		for _, shape := range shapes {
			profiles = append(profiles, caddie.ShotShapeProfile{
				Club:           club,
				Intent:         shape.intent,
				CoreCarryMeanM: carry,
				CoreCarryStdM:  round1(carry * 0.04),
				CoreSideMeanM:  shape.sideMean,
				CoreSideStdM:   round1(carry * 0.035),
				TailLeftProb:   round3(shape.left * scale),
				TailRightProb:  round3(shape.right * scale),
			})
		}
	}
	return profiles
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
