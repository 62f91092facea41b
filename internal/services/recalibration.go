package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/stitts-dev/golf-caddie/internal/models"
	"github.com/stitts-dev/golf-caddie/pkg/database"
)

// RecalibrationService periodically rebuilds every club's aggregates from the
// raw shot samples, dropping outliers the running sums cannot.
type RecalibrationService struct {
	db        *database.DB
	cache     Cache
	clock     Clock
	logger    *logrus.Logger
	cron      *cron.Cron
	schedule  string
	mu        sync.Mutex
	isRunning bool
}

type RecalibrationReport struct {
	Players int `json:"players"`
	Clubs   int `json:"clubs"`
	Samples int `json:"samples"`
	Dropped int `json:"dropped"`
}

func NewRecalibrationService(db *database.DB, cache Cache, clock Clock, schedule string, logger *logrus.Logger) *RecalibrationService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &RecalibrationService{
		db:       db,
		cache:    cache,
		clock:    clock,
		logger:   logger,
		cron:     cron.New(),
		schedule: schedule,
	}
}

func (s *RecalibrationService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("recalibration is already running")
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RecalibrateAll(context.Background()); err != nil {
			s.logger.WithError(err).Error("Scheduled recalibration failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule recalibration: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	s.logger.WithField("schedule", s.schedule).Info("Recalibration service started")
	return nil
}

func (s *RecalibrationService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Recalibration service stopped")
}

func (s *RecalibrationService) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RecalibrateAll recomputes the aggregates of every bag club from its shot
// samples. Clubs without samples are reset to no data.
func (s *RecalibrationService) RecalibrateAll(ctx context.Context) (RecalibrationReport, error) {
	var report RecalibrationReport

	var clubs []models.BagClub
	if err := s.db.WithContext(ctx).Order("player_id ASC, position ASC").Find(&clubs).Error; err != nil {
		return report, fmt.Errorf("failed to load bag clubs: %w", err)
	}

	var samples []models.ShotSample
	if err := s.db.WithContext(ctx).Order("recorded_at ASC").Find(&samples).Error; err != nil {
		return report, fmt.Errorf("failed to load shot samples: %w", err)
	}

	carries := make(map[string][]float64)
	for _, sample := range samples {
		key := sample.PlayerID + "/" + sample.ClubID
		carries[key] = append(carries[key], sample.CarryM)
	}

	now := s.clock.Now()
	players := make(map[string]struct{})
	var staleKeys []string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range clubs {
			club := &clubs[i]
			raw := carries[club.PlayerID+"/"+club.ClubID]
			if len(raw) == 0 && club.SampleCount == 0 {
				continue
			}

			stats := AggregateCarries(club.ClubID, raw, now)
			club.ApplyStats(stats)
			if err := tx.Save(club).Error; err != nil {
				return err
			}

			players[club.PlayerID] = struct{}{}
			staleKeys = append(staleKeys, DistanceStatsCacheKey(club.PlayerID, club.ClubID))
			report.Clubs++
			report.Samples += stats.Samples
			report.Dropped += len(raw) - stats.Samples
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("failed to store recalibrated stats: %w", err)
	}
	report.Players = len(players)

	if s.cache != nil && len(staleKeys) > 0 {
		if err := s.cache.Delete(ctx, staleKeys...); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate recalibrated stats")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"players": report.Players,
		"clubs":   report.Clubs,
		"samples": report.Samples,
		"dropped": report.Dropped,
	}).Info("Recalibration completed")

	return report, nil
}
