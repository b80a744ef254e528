package cmd

import (
	"os"
	"strings"

	"example.com/backstage/services/picking/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:   "picking",
		Short: "Warehouse picking service",
		Long: `Picking service for warehouse order separation and scanning.

Functions:
- Import lots of orders and drive them through separation and scanning
- Register seal codes, unique across every lot and single order
- Score completed work with XP and keep daily streaks
- Consume lot imports from Azure Service Bus and project activity into Elasticsearch`,
		SilenceUsage: true,
	}
)

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory containing config.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig reads the configuration and applies its logging settings
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return config.Config{}, err
	}
	configureLogging(cfg)
	return cfg, nil
}

func configureLogging(cfg config.Config) {
	if cfg.Environment == "development" || cfg.Logging.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	if os.Getenv("LOG_LEVEL") != "" {
		// main already applied it
		return
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}
