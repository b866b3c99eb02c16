package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/comparely/catalog-service/config"
	"github.com/comparely/catalog-service/internal/database"
	"github.com/comparely/catalog-service/internal/pipeline"
	"github.com/comparely/catalog-service/internal/storage"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog CLI - category and product batch reconciliation",
	Long: `A CLI for the catalog service. It reconciles newline-delimited JSON batch
files of categories and products into the document store, inspects batch files
before they are ingested, exports the catalog to a spreadsheet and manages the
database schema.`,
	SilenceUsage:      true,
	PersistentPreRunE: persistentPreRun,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml or ./config.yaml)")
}

func initConfig() {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// parse works without a config
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
	}
}

// persistentPreRun runs before each command and initializes the logger
func persistentPreRun(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	logger = initLogger()
	return nil
}

// requireConfig fails commands that need the document store or ingest paths.
func requireConfig(cmd *cobra.Command) error {
	if cfg == nil {
		return fmt.Errorf("config required for %s command but not loaded", cmd.Name())
	}
	return nil
}

func initLogger() *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if cfg != nil && cfg.Logging.Level != "" {
		if parsedLevel, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsedLevel
		}
	}

	// Console output unless json is asked for; stdout carries command results.
	var output io.Writer
	if cfg != nil && cfg.Logging.Format == "json" {
		output = os.Stderr
	} else {
		noColor := false
		if cfg != nil {
			noColor = cfg.Logging.NoColor
		}
		output = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: noColor}
	}

	log := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return &log
}

// openStores connects to the configured document store. The caller closes
// the shared pool with database.Close.
func openStores(ctx context.Context) (types.CategoryStore, types.RunStore, error) {
	if cfg.Database.Driver == "memory" {
		logger.Warn().Msg("Using in-memory document store; nothing outlives this command")
		return database.NewMemoryStore(), database.NewMemoryRunStore(), nil
	}

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return nil, nil, err
		}
	}
	if err := database.Connect(ctx, cfg.Database.URL, database.PoolOptions{
		MaxConns:    cfg.Database.MaxConnections,
		MinConns:    cfg.Database.MinConnections,
		MaxLifetime: cfg.Database.MaxConnLifetime,
		MaxIdleTime: cfg.Database.MaxConnIdleTime,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Info().Msg("Database connected")

	pool := database.Pool()
	return database.NewCategoryStore(pool), database.NewRunStore(pool), nil
}

// ingestFiles opens the configured ingest directory.
func ingestFiles() (*storage.LocalStorage, error) {
	return storage.NewLocalStorage(afero.NewOsFs(), cfg.Ingest.BasePath)
}

func pipelineConfig() pipeline.Config {
	return pipeline.Config{
		Mode:           pipeline.Mode(cfg.Ingest.Mode),
		CategoriesPath: cfg.Ingest.CategoriesPath,
		ProductsPath:   cfg.Ingest.ProductsPath,
		ArchiveDir:     cfg.Ingest.ArchiveDir,
		Concurrency:    cfg.Ingest.Concurrency,
	}
}

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
