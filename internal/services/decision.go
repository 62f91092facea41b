package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/models"
	"github.com/stitts-dev/golf-caddie/pkg/database"
	"github.com/stitts-dev/golf-caddie/pkg/logger"
)

const defaultDecisionHistoryLimit = 20

type DecisionInput struct {
	PlayerID   string
	Hole       caddie.Hole
	Preference *caddie.RiskPreference
}

// DecisionOutcome is a decision plus how it was produced. Record is nil when
// the decision could not be stored.
type DecisionOutcome struct {
	Decision       caddie.Decision
	Record         *models.DecisionRecord
	Preference     caddie.RiskPreference
	MissingStats   []string
	StaleStats     []string
	ProfilesLoaded bool
}

// DecisionService gathers a player's bag, stats and profiles, runs the engine
// and keeps the decision history.
type DecisionService struct {
	db          *database.DB
	engine      *caddie.Engine
	bags        *BagService
	stats       *DistanceStatsService
	shapes      *ShotShapeService
	defaultPref caddie.RiskPreference
	logger      *logrus.Logger
}

func NewDecisionService(
	db *database.DB,
	engine *caddie.Engine,
	bags *BagService,
	stats *DistanceStatsService,
	shapes *ShotShapeService,
	defaultPref caddie.RiskPreference,
	logger *logrus.Logger,
) *DecisionService {
	if defaultPref == "" {
		defaultPref = caddie.RiskBalanced
	}
	return &DecisionService{
		db:          db,
		engine:      engine,
		bags:        bags,
		stats:       stats,
		shapes:      shapes,
		defaultPref: defaultPref,
		logger:      logger,
	}
}

func (s *DecisionService) Decide(ctx context.Context, in DecisionInput) (*DecisionOutcome, error) {
	bag, err := s.bags.PlayerBag(ctx, in.PlayerID)
	if err != nil {
		return nil, err
	}

	outcome := &DecisionOutcome{Preference: s.defaultPref}
	if in.Preference != nil {
		outcome.Preference = *in.Preference
	}

	stats := s.fetchStats(ctx, in.PlayerID, bag.ActiveClubs(), outcome)

	var lookup caddie.ShotShapeLookup
	if s.shapes != nil {
		profiles, err := s.shapes.ProfilesFor(ctx, in.PlayerID)
		if err != nil {
			s.logger.WithError(err).WithField("player_id", in.PlayerID).Warn("Deciding without shot shape profiles")
		} else {
			lookup = profiles
			outcome.ProfilesLoaded = profiles.Len() > 0
		}
	}

	// Without a request preference the engine keeps its configured
	// thresholds, including any operator overrides of the preset.
	outcome.Decision = s.engine.Decide(caddie.DecisionRequest{
		Hole:       in.Hole,
		Bag:        bag,
		Stats:      stats,
		Profiles:   lookup,
		Preference: in.Preference,
	})

	log := logger.WithHoleContext(in.PlayerID, in.Hole.Number).WithFields(logrus.Fields{
		"strategy": outcome.Decision.Strategy,
		"reason":   outcome.Decision.Reason,
	})

	record, err := models.NewDecisionRecord(in.PlayerID, outcome.Preference, outcome.Decision)
	if err == nil {
		err = s.db.WithContext(ctx).Create(record).Error
	}
	if err != nil {
		log.WithError(err).Error("Failed to store decision record")
	} else {
		outcome.Record = record
	}

	log.Info("Caddie decision made")
	return outcome, nil
}

// fetchStats loads every club concurrently. A club whose fetch fails is left
// out of the map so the engine treats it as having no data.
func (s *DecisionService) fetchStats(ctx context.Context, playerID string, clubs []caddie.PlayerBagClub, outcome *DecisionOutcome) caddie.StatsMap {
	stats := make(caddie.StatsMap, len(clubs))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, club := range clubs {
		wg.Add(1)
		go func(clubID string) {
			defer wg.Done()
			result := s.stats.Fetch(ctx, playerID, clubID)

			mu.Lock()
			defer mu.Unlock()
			switch result.Status {
			case FetchFailed:
				outcome.MissingStats = append(outcome.MissingStats, clubID)
				return
			case FetchStale:
				outcome.StaleStats = append(outcome.StaleStats, clubID)
			}
			if result.Stats != nil {
				stats[clubID] = *result.Stats
			}
		}(club.ClubID)
	}
	wg.Wait()

	sort.Strings(outcome.MissingStats)
	sort.Strings(outcome.StaleStats)
	return stats
}

func (s *DecisionService) ListDecisions(ctx context.Context, playerID string, limit int) ([]models.DecisionRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultDecisionHistoryLimit
	}

	var records []models.DecisionRecord
	if err := s.db.WithContext(ctx).
		Where("player_id = ?", playerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return records, nil
}
