package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"marketplace/api/internal/cache"
	"marketplace/api/internal/config"
	"marketplace/api/internal/database"
	"marketplace/api/internal/handlers"
	"marketplace/api/internal/jobs"
	"marketplace/api/internal/log"
	"marketplace/api/internal/mail"
	"marketplace/api/internal/metrics"
	"marketplace/api/internal/repository"
	"marketplace/api/internal/repository/memory"
	"marketplace/api/internal/security"
	"marketplace/api/internal/server"
	"marketplace/api/internal/service"
)

type stores struct {
	users      repository.UserStore
	sessions   repository.SessionStore
	categories repository.CategoryStore
	companies  repository.CompanyStore
	pool       *pgxpool.Pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment, "api")

	// Missing token settings are fatal before anything listens.
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx := context.Background()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open storage")
	}

	var redisClient *redis.Client
	var mailer mail.Gateway = mail.NewLogGateway(logger)
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect redis")
		}
		mailer = mail.NewStreamGateway(redisClient, cfg.Mail.Stream)
	}

	issuer, err := security.NewTokenIssuer(cfg.TokenConfig())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init token issuer")
	}

	m := metrics.New()
	auth := service.NewAuthService(
		st.users,
		st.sessions,
		security.NewArgon2Hasher(security.DefaultArgon2Params),
		issuer,
		mailer,
		cfg.Security,
		m,
		logger,
	)
	categories := service.NewCategoryService(
		st.categories,
		memory.NewCategoryStore(memory.DefaultCategories()),
		cfg.Catalog.FallbackOnUnavailable,
		m,
		logger,
	)

	deps := handlers.Dependencies{
		Auth:       auth,
		Categories: categories,
		Companies:  service.NewCompanyService(st.companies, logger),
		Metrics:    m,
		Cache:      redisClient,
	}
	if st.pool != nil {
		deps.DB = st.pool
	}

	httpServer := server.NewHTTPServer(cfg, logger, handlers.NewHandlerSet(logger, cfg, deps))

	scheduler := jobs.NewScheduler(st.users, cfg.Jobs.ResetSweep, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, st.pool, redisClient)
}

func openStores(ctx context.Context, cfg *config.AppConfig, logger zerolog.Logger) (stores, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn().Msg("using in-memory storage, data is lost on restart")
		return stores{
			users:      memory.NewUserStore(),
			sessions:   memory.NewSessionStore(),
			categories: memory.NewCategoryStore(memory.DefaultCategories()),
			companies:  memory.NewCompanyStore(),
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return stores{}, err
	}
	if cfg.Postgres.AutoMigrate {
		if err := database.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, err
		}
		logger.Info().Msg("migrations applied")
	}

	return stores{
		users:      repository.NewUserRepository(pool),
		sessions:   repository.NewSessionRepository(pool),
		categories: repository.NewCategoryRepository(pool),
		companies:  repository.NewCompanyRepository(pool),
		pool:       pool,
	}, nil
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn().Msg("reset token sweep still running at shutdown")
	}

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
