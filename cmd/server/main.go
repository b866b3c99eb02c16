package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/comparely/catalog-service/config"
	_ "github.com/comparely/catalog-service/docs"
	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/handlers"
	"github.com/comparely/catalog-service/internal/middleware"
	"github.com/comparely/catalog-service/internal/pipeline"
	"github.com/comparely/catalog-service/internal/storage"
	"github.com/comparely/catalog-service/internal/telemetry"
	"github.com/comparely/catalog-service/internal/types"
)

var version = "dev"

// @title           Catalog Service API
// @version         1.0
// @description     Category and product catalog with batch reconciliation from newline-delimited JSON files.
// @BasePath        /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg, err := config.Load(os.Getenv("CATALOG_CONFIG"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Str("version", version).Msg("Starting catalog service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	store, runs, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer database.Close()

	if n, err := runs.MarkInterrupted(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to handle interrupted runs")
	} else if n > 0 {
		logger.Info().Int("count", n).Msg("Marked interrupted runs")
	}

	files, err := storage.NewLocalStorage(afero.NewOsFs(), cfg.Ingest.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open ingest directory")
	}

	runner := pipeline.NewRunner(store, files, pipeline.Config{
		Mode:           pipeline.Mode(cfg.Ingest.Mode),
		CategoriesPath: cfg.Ingest.CategoriesPath,
		ProductsPath:   cfg.Ingest.ProductsPath,
		ArchiveDir:     cfg.Ingest.ArchiveDir,
		Concurrency:    cfg.Ingest.Concurrency,
	}, *logger, pipeline.WithRunRecorder(runs))

	handlers.Init(handlers.Dependencies{
		Store:    store,
		Runs:     runs,
		Runner:   runner,
		Shutdown: stop,
	})

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(ctx, handlers.RouterOptions{
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimit: middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.Burst,
			PerClient:         cfg.RateLimit.PerClient,
		},
		Docs: cfg.Server.Docs,
	}, *logger)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	if cfg.Ingest.RunOnStart {
		if run, err := runner.Start(ctx, types.TriggerStartup); err != nil {
			logger.Warn().Err(err).Msg("Startup ingestion pass not started")
		} else {
			logger.Info().Str("run_id", run.ID).Msg("Startup ingestion pass started")
		}
	}

	<-ctx.Done()
	stop()

	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	// An in-flight pass finishes its current phase before the store closes.
	runner.Wait()

	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

// openStores returns the category and run stores for the configured driver.
func openStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (types.CategoryStore, types.RunStore, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn().Msg("Using in-memory document store; data is lost on exit")
		return database.NewMemoryStore(), database.NewMemoryRunStore(), nil
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("Database migrations applied")
	}

	if err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		return nil, nil, err
	}
	logger.Info().Msg("Database connected")

	pool := database.Pool()
	return database.NewCategoryStore(pool), database.NewRunStore(pool), nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "catalog-service").Logger()
	return &logger
}
