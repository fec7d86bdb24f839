package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/mdaffar/marketledger/internal/adapter/http"
	"github.com/mdaffar/marketledger/internal/adapter/http/handler"
	"github.com/mdaffar/marketledger/internal/adapter/persistence"
	"github.com/mdaffar/marketledger/internal/adapter/repository/memory"
	redisRepo "github.com/mdaffar/marketledger/internal/adapter/repository/redis"
	"github.com/mdaffar/marketledger/internal/infrastructure/clock"
	"github.com/mdaffar/marketledger/internal/infrastructure/config"
	"github.com/mdaffar/marketledger/internal/infrastructure/eventpublisher"
	"github.com/mdaffar/marketledger/internal/infrastructure/logger"
	"github.com/mdaffar/marketledger/internal/infrastructure/metrics"
	"github.com/mdaffar/marketledger/internal/infrastructure/redis"
	"github.com/mdaffar/marketledger/internal/usecase"
)

const (
	accountsSnapshotFile = "accounts.txt"
	ordersSnapshotFile   = "orders.txt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	ctx := context.Background()

	// Connect to Redis when idempotency caching is enabled
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")
	}

	// Initialize repositories
	txManager := memory.NewTxManager()
	accountRepo := memory.NewAccountRepository()
	transactionRepo := memory.NewTransactionRepository()
	orderRepo := memory.NewOrderRepository()
	itemRepo := memory.NewItemRepository()
	partyRepo := memory.NewPartyRepository()
	outboxRepo := memory.NewOutboxRepository()
	idGen := memory.NewULIDGenerator()
	wallClock := clock.NewSystem()
	m := metrics.New()

	// Initialize use cases
	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, transactionRepo, outboxRepo, idGen, wallClock, m)
	orderUC := usecase.NewOrderBookUseCase(txManager, orderRepo, itemRepo, outboxRepo, idGen, wallClock, m)
	paymentUC := usecase.NewPaymentUseCase(txManager, accountRepo, transactionRepo, orderRepo, itemRepo, outboxRepo, idGen, wallClock, m)
	catalogUC := usecase.NewCatalogUseCase(txManager, itemRepo, partyRepo, wallClock)
	partyUC := usecase.NewPartyUseCase(partyRepo, ledgerUC, wallClock)

	// Load snapshots
	snapshotter := persistence.NewSnapshotter(txManager, accountRepo, orderRepo, ledgerUC, log, m)
	if cfg.DataDir != "" {
		loadSnapshots(ctx, snapshotter, cfg, log)
	}

	// Start the outbox publisher
	publisherCtx, stopPublisher := context.WithCancel(ctx)
	defer stopPublisher()

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(log),
		Logger:     log,
		BatchSize:  cfg.PublisherBatchSize,
		Interval:   cfg.PublisherInterval,
	})
	go func() {
		if err := publisher.Start(publisherCtx); err != nil && err != context.Canceled {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Initialize handlers
	partyHandler := handler.NewPartyHandler(partyUC)
	accountHandler := handler.NewAccountHandler(ledgerUC, wallClock)
	itemHandler := handler.NewItemHandler(catalogUC)
	orderHandler := handler.NewOrderHandler(orderUC, paymentUC)
	reportHandler := handler.NewReportHandler(ledgerUC, orderUC)
	healthHandler := handler.NewHealthHandler(redisClient)

	var idempotencyStore usecase.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
	}

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PartyHandler:     partyHandler,
		AccountHandler:   accountHandler,
		ItemHandler:      itemHandler,
		OrderHandler:     orderHandler,
		ReportHandler:    reportHandler,
		HealthHandler:    healthHandler,
		Logger:           log,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopPublisher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if cfg.DataDir != "" && cfg.SnapshotOnShutdown {
		saveSnapshots(ctx, snapshotter, cfg, log)
	}

	log.Info().Msg("server stopped")
}

func loadSnapshots(ctx context.Context, s *persistence.Snapshotter, cfg *config.Config, log zerolog.Logger) {
	accountsPath := filepath.Join(cfg.DataDir, accountsSnapshotFile)
	if _, err := os.Stat(accountsPath); err == nil {
		if _, err := s.LoadAccounts(ctx, accountsPath); err != nil {
			log.Fatal().Err(err).Msg("failed to load accounts snapshot")
		}
	}

	ordersPath := filepath.Join(cfg.DataDir, ordersSnapshotFile)
	if _, err := os.Stat(ordersPath); err == nil {
		if _, err := s.LoadOrders(ctx, ordersPath); err != nil {
			log.Fatal().Err(err).Msg("failed to load orders snapshot")
		}
	}
}

func saveSnapshots(ctx context.Context, s *persistence.Snapshotter, cfg *config.Config, log zerolog.Logger) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Error().Err(err).Msg("failed to create data directory")
		return
	}

	if err := s.SaveAccounts(ctx, filepath.Join(cfg.DataDir, accountsSnapshotFile), cfg.LedgerName); err != nil {
		log.Error().Err(err).Msg("failed to save accounts snapshot")
	}
	if err := s.SaveOrders(ctx, filepath.Join(cfg.DataDir, ordersSnapshotFile), cfg.StoreName); err != nil {
		log.Error().Err(err).Msg("failed to save orders snapshot")
	}
}
