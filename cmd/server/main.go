package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-caddie/internal/api"
	"github.com/stitts-dev/golf-caddie/internal/api/handlers"
	"github.com/stitts-dev/golf-caddie/internal/caddie"
	"github.com/stitts-dev/golf-caddie/internal/services"
	"github.com/stitts-dev/golf-caddie/pkg/config"
	"github.com/stitts-dev/golf-caddie/pkg/database"
	"github.com/stitts-dev/golf-caddie/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	log := logger.WithService("caddie-service")
	log.WithFields(logrus.Fields{
		"environment":     cfg.Env,
		"port":            cfg.Port,
		"risk_preference": cfg.RiskPreference,
	}).Info("Starting caddie service")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	cacheService := services.NewCacheService(redisClient, structuredLogger)
	breakers := services.NewCircuitBreakerService(
		cfg.CircuitBreakerThreshold,
		cfg.ExternalAPITimeout,
		structuredLogger,
	)
	clock := services.SystemClock{}

	engineCfg := cfg.EngineConfig()
	engine := caddie.NewEngine(engineCfg, caddie.StandardCarryTable)
	defaultPref, err := caddie.ParseRiskPreference(cfg.RiskPreference)
	if err != nil {
		log.Fatalf("Invalid risk preference: %v", err)
	}

	bagService := services.NewBagService(db, cacheService, clock, structuredLogger)
	statsService := services.NewDistanceStatsService(
		bagService,
		cacheService,
		breakers,
		clock,
		cfg.StatsFreshness,
		cfg.StatsCacheTTL,
		structuredLogger,
	)
	shapeService := services.NewShotShapeService(db, cacheService, breakers, cfg.ProfileCacheTTL, structuredLogger)
	decisionService := services.NewDecisionService(
		db, engine, bagService, statsService, shapeService, defaultPref, structuredLogger,
	)

	var recalibration *services.RecalibrationService
	if cfg.EnableRecalibration {
		recalibration = services.NewRecalibrationService(db, cacheService, clock, cfg.RecalibrationSchedule, structuredLogger)
		if err := recalibration.Start(); err != nil {
			log.Fatalf("Failed to start recalibration scheduler: %v", err)
		}
		defer recalibration.Stop()
	}

	router := api.NewRouter(
		cfg,
		handlers.NewCaddieHandler(decisionService, structuredLogger),
		handlers.NewBagHandler(bagService, caddie.StandardCarryTable, engineCfg.MinAutocalibratedSamples, structuredLogger),
		handlers.NewHealthHandler(db, cacheService, breakers, recalibration, structuredLogger),
		structuredLogger,
	)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Caddie service started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down caddie service...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Caddie service forced to shutdown: %v", err)
	}

	log.Info("Caddie service exited")
}
