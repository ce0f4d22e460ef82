package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/iho/commledger/internal/adapter/http"
	"github.com/iho/commledger/internal/adapter/http/handler"
	postgresRepo "github.com/iho/commledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/commledger/internal/adapter/repository/redis"
	"github.com/iho/commledger/internal/decay"
	"github.com/iho/commledger/internal/infrastructure/auth"
	"github.com/iho/commledger/internal/infrastructure/config"
	"github.com/iho/commledger/internal/infrastructure/eventpublisher"
	"github.com/iho/commledger/internal/infrastructure/logger"
	"github.com/iho/commledger/internal/infrastructure/metrics"
	"github.com/iho/commledger/internal/infrastructure/notifier"
	"github.com/iho/commledger/internal/infrastructure/postgres"
	"github.com/iho/commledger/internal/infrastructure/redis"
	"github.com/iho/commledger/internal/usecase"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log.Logger = logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "commledger",
	})

	decayRate, err := cfg.DecayRate()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid decay rate")
	}
	decayStart, err := cfg.DecayStart()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid decay start date")
	}
	calc, err := decay.NewCalculator(decayRate, decayStart)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build decay calculator")
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	m := metrics.New()

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	entryRepo := postgresRepo.NewEntryRepository(pool)
	contributionRepo := postgresRepo.NewContributionRepository(pool)
	linkRepo := postgresRepo.NewLinkRepository(pool)
	userRepo := postgresRepo.NewUserRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	gate := usecase.NewGate()
	projector := usecase.NewProjector(entryRepo, linkRepo, calc)
	writer := usecase.NewWriter(entryRepo, idGen)
	notify := notifier.NewLogNotifier(slog.Default())

	transferUC := usecase.NewTransferUseCase(txManager, userRepo, linkRepo, outboxRepo, projector, writer, gate, idGen, notify, m).
		WithRetrier(retrier)
	contributionUC := usecase.NewContributionUseCase(txManager, contributionRepo, userRepo, outboxRepo, projector, writer, gate, idGen, notify, m)
	linkUC := usecase.NewLinkUseCase(txManager, userRepo, linkRepo, projector, transferUC, gate, calc, idGen, cache, m, cfg.LinkValidity)
	entryUC := usecase.NewEntryUseCase(entryRepo, userRepo, projector)
	userUC := usecase.NewUserUseCase(userRepo, idGen)
	integrityUC := usecase.NewIntegrityUseCase(entryRepo, userRepo, calc)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AuthHandler:         handler.NewAuthHandler(userUC, jwtManager, m),
		UserHandler:         handler.NewUserHandler(userUC),
		ContributionHandler: handler.NewContributionHandler(contributionUC),
		TransferHandler:     handler.NewTransferHandler(transferUC),
		LinkHandler:         handler.NewLinkHandler(linkUC),
		EntryHandler:        handler.NewEntryHandler(entryUC),
		IntegrityHandler:    handler.NewIntegrityHandler(integrityUC),
		HealthHandler:       handler.NewHealthHandler(pool, redisClient),
		JWTManager:          jwtManager,
		IdempotencyStore:    idempotencyStore,
		Metrics:             m,
		Logger:              log.Logger,
		RateLimit:           cfg.RateLimit,
		RateBurst:           cfg.RateBurst,
	})

	// Outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	var publisher eventpublisher.Publisher
	switch cfg.OutboxPublisher {
	case "kafka":
		kafkaPublisher := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing outbox events to kafka")
	default:
		publisher = eventpublisher.NewLogPublisher(slog.Default())
	}

	ep := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  publisher,
		Logger:     slog.Default(),
		Metrics:    m,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := ep.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
