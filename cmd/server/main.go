package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/slugster/slugster/config"
	appmodel "github.com/slugster/slugster/internal/app/model"
	apprepository "github.com/slugster/slugster/internal/app/repository"
	appserver "github.com/slugster/slugster/internal/app/server"
	appservice "github.com/slugster/slugster/internal/app/service"
	"github.com/slugster/slugster/internal/infra/logger"
	infraNATS "github.com/slugster/slugster/internal/infra/nats"
	infraPostgres "github.com/slugster/slugster/internal/infra/postgres"
	infraPrometheus "github.com/slugster/slugster/internal/infra/prometheus"
	infraRedis "github.com/slugster/slugster/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
	)

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not configured")
	}

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Link{}, &appmodel.Click{}, &appmodel.User{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully")

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	linkRepo := apprepository.NewLinkRepository(gormDB, pool)
	clickRepo := apprepository.NewClickRepository(gormDB)
	userRepo := apprepository.NewUserRepository(gormDB)

	slugFilter := appservice.NewSlugFilter()
	if err := slugFilter.Seed(ctx, linkRepo); err != nil {
		log.Fatal("Failed to seed slug filter", zap.Error(err))
	}

	tokenTTL := time.Hour
	if cfg.Auth.TokenTTL != "" {
		if d, err := time.ParseDuration(cfg.Auth.TokenTTL); err == nil {
			tokenTTL = d
		}
	}
	authService := appservice.NewAuthService(userRepo, []byte(cfg.Auth.JWTSecret), tokenTTL)

	clickPublisher := appservice.NewClickPublisher(js)
	clickConsumer := appservice.NewClickConsumer(js, log, clickRepo)
	if err := clickConsumer.Start(); err != nil {
		log.Fatal("Failed to start click consumer", zap.Error(err))
	}

	linkService := appservice.NewLinkService(linkRepo, clickRepo, slugFilter, log)
	statsService := appservice.NewStatsService(linkRepo, clickRepo)
	redirectService := appservice.NewRedirectService(appservice.RedirectDeps{
		Links:    linkRepo,
		Filter:   slugFilter,
		Cache:    infraRedis.NewLinkCache(redisClient),
		Recorder: clickPublisher,
		Logger:   log,
	})

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Postgres:  pool,
		Redis:     redisClient,
		NATS:      natsConn,
		JetStream: js,
		Auth:      authService,
		Links:     linkService,
		Stats:     statsService,
		Redirect:  redirectService,
	})

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
