package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/email"
	"github.com/jwalitptl/oppe-api/internal/repository/postgres"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	"github.com/jwalitptl/oppe-api/internal/service/sweep"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/messaging/redis"
	"github.com/jwalitptl/oppe-api/pkg/metrics"
)

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &appLogger.ZL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Host != "" {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	}

	physicianRepo := postgres.NewPhysicianRepository(db)
	caseRepo := postgres.NewCaseRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	competencyRepo := postgres.NewCompetencyRepository(db)
	scoreRepo := postgres.NewScoreRepository(db)
	alertRepo := postgres.NewAlertRepository(db)

	m := metrics.New("oppe_worker")
	mapping := scoring.MappingFromConfig(cfg.Scoring)

	scoringSvc := scoring.NewService(caseRepo, reviewRepo, scoreRepo, competencyRepo, mapping, cfg.Scoring, appLogger, m)
	alertingSvc := alerting.NewService(alertRepo, broker, emailSvc, cfg.Alerts, appLogger, m)
	sweeper := sweep.NewSweeper(physicianRepo, scoringSvc, alertingSvc, appLogger, m)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down sweep worker...")
		cancel()
	}()

	runSweep := func() {
		summary, err := sweeper.Run(ctx, time.Now())
		if err != nil {
			appLogger.ZL.Error().Err(err).Msg("sweep failed to run")
			return
		}
		appLogger.ZL.Info().
			Int("physicians", summary.Physicians).
			Int("snapshots", summary.Snapshots).
			Int("skipped", summary.Skipped).
			Int("failures", len(summary.Failures)).
			Dur("elapsed", summary.FinishedAt.Sub(summary.StartedAt)).
			Msg("sweep completed")
	}

	log.Info().Dur("interval", cfg.Sweep.Interval).Msg("sweep worker started")
	runSweep()

	ticker := time.NewTicker(cfg.Sweep.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("sweep worker exited")
			return
		case <-ticker.C:
			runSweep()
		}
	}
}
