package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"
	"github.com/vietddude/trendlake/internal/control"
	"github.com/vietddude/trendlake/internal/core/config"
	"github.com/vietddude/trendlake/internal/core/domain"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "trendlake",
	Short: "YouTube most-popular harvester",
	Long: `Trendlake collects the most-popular charts for every region and category
four times a day and publishes them as partitioned columnar datasets.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// loadConfig reads .env and the config file, then sets up logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup logging
	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	return cfg
}

// runApp builds the app for kind and runs fn under a signal-aware context.
func runApp(kind domain.RunKind, fn func(ctx context.Context, app *control.App) error) {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := control.NewApp(ctx, cfg, kind)
	if err != nil {
		slog.Error("Failed to initialize trendlake", "error", err)
		os.Exit(1)
	}

	runErr := fn(ctx, app)
	if err := app.Close(); err != nil {
		slog.Warn("Error during shutdown", "error", err)
	}
	if runErr != nil {
		os.Exit(1)
	}
}
