package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/pkg/utils"
)

// StatsSource is the store of record for per-club distance aggregates.
// A nil result with no error means the club has no shots.
type StatsSource interface {
	LoadClubStats(ctx context.Context, playerID, clubID string) (*caddie.ClubDistanceStats, error)
}

type FetchStatus string

const (
	FetchFresh  FetchStatus = "fresh"
	FetchStale  FetchStatus = "stale"
	FetchFailed FetchStatus = "failed"
)

// FetchResult is the outcome of one stats fetch. Stats is only meaningful
// when Status is not FetchFailed.
type FetchResult struct {
	ClubID    string
	Stats     *caddie.ClubDistanceStats
	Status    FetchStatus
	FetchedAt time.Time
	Err       error
}

func (r FetchResult) Usable() bool {
	return r.Status != FetchFailed
}

type cachedStats struct {
	Stats     *caddie.ClubDistanceStats `json:"stats"`
	FetchedAt time.Time                 `json:"fetched_at"`
}

// DistanceStatsService reads stats through the source and keeps a
// cache-aside copy. A failed read falls back to a cached copy younger than
// the freshness window.
type DistanceStatsService struct {
	source    StatsSource
	cache     Cache
	breaker   *CircuitBreakerService
	clock     Clock
	freshness time.Duration
	ttl       time.Duration
	logger    *logrus.Logger
}

func NewDistanceStatsService(
	source StatsSource,
	cache Cache,
	breaker *CircuitBreakerService,
	clock Clock,
	freshness time.Duration,
	ttl time.Duration,
	logger *logrus.Logger,
) *DistanceStatsService {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl < freshness {
		ttl = freshness
	}
	return &DistanceStatsService{
		source:    source,
		cache:     cache,
		breaker:   breaker,
		clock:     clock,
		freshness: freshness,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *DistanceStatsService) Fetch(ctx context.Context, playerID, clubID string) FetchResult {
	key := DistanceStatsCacheKey(playerID, clubID)

	stats, err := s.load(ctx, playerID, clubID)
	now := s.clock.Now()
	if err == nil {
		if s.cache != nil {
			if cacheErr := s.cache.Set(ctx, key, cachedStats{Stats: stats, FetchedAt: now}, s.ttl); cacheErr != nil {
				s.logger.WithError(cacheErr).WithField("club_id", clubID).Warn("Failed to cache distance stats")
			}
		}
		return FetchResult{ClubID: clubID, Stats: stats, Status: FetchFresh, FetchedAt: now}
	}

	log := s.logger.WithFields(logrus.Fields{
		"player_id": playerID,
		"club_id":   clubID,
	})

	if s.cache != nil {
		var cached cachedStats
		if cacheErr := s.cache.Get(ctx, key, &cached); cacheErr == nil {
			age := now.Sub(cached.FetchedAt)
			if age < s.freshness {
				log.WithError(err).WithField("age", age.String()).Warn("Serving cached distance stats after fetch failure")
				return FetchResult{ClubID: clubID, Stats: cached.Stats, Status: FetchStale, FetchedAt: cached.FetchedAt, Err: err}
			}
			log.WithField("age", age.String()).Debug("Cached distance stats too old to serve")
		}
	}

	log.WithError(err).Error("Failed to fetch distance stats")
	return FetchResult{
		ClubID: clubID,
		Status: FetchFailed,
		Err:    fmt.Errorf("%w: %v", utils.ErrStatsUnavailable, err),
	}
}

func (s *DistanceStatsService) load(ctx context.Context, playerID, clubID string) (*caddie.ClubDistanceStats, error) {
	result, err := s.breaker.Execute(BreakerDistanceStats, func() (interface{}, error) {
		return s.source.LoadClubStats(ctx, playerID, clubID)
	})
	if err != nil {
		return nil, err
	}
	stats, _ := result.(*caddie.ClubDistanceStats)
	return stats, nil
}
