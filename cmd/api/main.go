package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/oppe-api/internal/config"
	"github.com/jwalitptl/oppe-api/internal/email"
	"github.com/jwalitptl/oppe-api/internal/handler"
	alertHandler "github.com/jwalitptl/oppe-api/internal/handler/alert"
	caseHandler "github.com/jwalitptl/oppe-api/internal/handler/caserecord"
	physicianHandler "github.com/jwalitptl/oppe-api/internal/handler/physician"
	reviewHandler "github.com/jwalitptl/oppe-api/internal/handler/review"
	scoreHandler "github.com/jwalitptl/oppe-api/internal/handler/score"
	"github.com/jwalitptl/oppe-api/internal/middleware"
	"github.com/jwalitptl/oppe-api/internal/model"
	"github.com/jwalitptl/oppe-api/internal/repository/postgres"
	"github.com/jwalitptl/oppe-api/internal/router"
	"github.com/jwalitptl/oppe-api/internal/service/alerting"
	"github.com/jwalitptl/oppe-api/internal/service/casereview"
	physicianService "github.com/jwalitptl/oppe-api/internal/service/physician"
	"github.com/jwalitptl/oppe-api/internal/service/scoring"
	"github.com/jwalitptl/oppe-api/pkg/logger"
	"github.com/jwalitptl/oppe-api/pkg/messaging/redis"
	"github.com/jwalitptl/oppe-api/pkg/metrics"
	"github.com/jwalitptl/oppe-api/pkg/security"
)

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

	if err := competencyRepo.Seed(context.Background(), model.SeedCompetencies()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed competencies")
	}

	m := metrics.New("oppe")
	mapping := scoring.MappingFromConfig(cfg.Scoring)

	scoringSvc := scoring.NewService(caseRepo, reviewRepo, scoreRepo, competencyRepo, mapping, cfg.Scoring, appLogger, m)
	alertingSvc := alerting.NewService(alertRepo, broker, emailSvc, cfg.Alerts, appLogger, m)
	caseReviewSvc := casereview.NewService(caseRepo, reviewRepo, scoringSvc, alertingSvc, appLogger)
	physicianSvc := physicianService.NewService(physicianRepo, security.NewBcryptHasher(0))

	middleware.RegisterValidators()
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT)

	r := router.NewRouter(
		authMiddleware,
		handler.NewHealthHandler(db),
		physicianHandler.NewHandler(physicianSvc),
		caseHandler.NewHandler(caseReviewSvc),
		reviewHandler.NewHandler(caseReviewSvc),
		scoreHandler.NewHandler(scoringSvc),
		alertHandler.NewHandler(alertingSvc),
		router.Config{
			RateLimitRPS:   cfg.Server.RequestsPerSecond,
			RateLimitBurst: cfg.Server.RateBurst,
			CORS:           middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
