package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"logsync-service/internal/infrastructure/config"
	"logsync-service/internal/infrastructure/persistence"
	"logsync-service/internal/infrastructure/router"
	gormRepo "logsync-service/internal/interface/repository"
	"logsync-service/internal/usecase"
	"logsync-service/pkg/logger"
	"logsync-service/pkg/metrics"
	"logsync-service/pkg/utils"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting Logsync Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection
	log.Info("Connecting to MongoDB")
	mongoClient, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := gormRepo.AutoMigrate(gormDB); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	// Set up repositories
	deviceRepository := gormRepo.NewGormDeviceRepository(gormDB)
	unitOfWork := gormRepo.NewGormUnitOfWork(gormDB)
	reportRepository := gormRepo.NewMongoSyncReportRepository(db)
	telemetryClient := gormRepo.NewTelemetryClient(
		cfg.GatewayBaseURL,
		cfg.GatewayUsername,
		cfg.GatewayPassword,
		cfg.GatewayTimeout,
		cfg.GatewayTokenTTL,
		log,
	)

	// Set up the sync pipeline
	appMetrics := metrics.NewMetrics("logsync")
	recordParser := utils.NewRecordParser(log)
	segmentBuilder := usecase.NewSegmentBuilder(log)
	materializer := usecase.NewEntryMaterializer(cfg.DefaultTakeoffTime, log)
	eventHandler := usecase.NewEventBatchHandler(recordParser, segmentBuilder, materializer, cfg.MinLookback, log)
	legacyHandler := usecase.NewLegacyBatchHandler(recordParser, materializer, log)

	payloadRouter := router.NewPayloadRouter(log)
	payloadRouter.Register(eventHandler)
	payloadRouter.Register(legacyHandler)

	syncProcessor := usecase.NewSyncProcessor(
		deviceRepository,
		telemetryClient,
		unitOfWork,
		reportRepository,
		payloadRouter,
		eventHandler,
		appMetrics,
		log,
		cfg.SyncWorkers,
	)

	// Start sync loop in a goroutine
	go func() {
		syncTicker := time.NewTicker(cfg.SyncInterval)
		defer syncTicker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Sync loop stopped")
				return
			case <-syncTicker.C:
				log.Info("Running sync cycle")
				if _, err := syncProcessor.SyncAll(ctx); err != nil {
					log.Error("Sync cycle failed", "error", err)
				}
			}
		}
	}()

	// Set up HTTP server for metrics
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Healthy"))
	})
	mux.HandleFunc("/rebuild", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		deviceID, err := strconv.ParseUint(r.URL.Query().Get("device_id"), 10, 32)
		if err != nil {
			http.Error(w, "invalid device_id", http.StatusBadRequest)
			return
		}
		entries, err := syncProcessor.ForceRebuild(r.Context(), uint(deviceID))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Write([]byte("Rebuilt entries: " + strconv.Itoa(entries)))
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(ctx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("Logsync Service stopped")
}
