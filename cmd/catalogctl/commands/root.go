package commands

import (
	"context"
	"fmt"

	"shop-catalog/internal/config"
	"shop-catalog/internal/database"
	"shop-catalog/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Operator tool for the shop catalog",
	Long: `catalogctl manages the catalog database and inspects a running deployment.

Configuration is read from .env and the environment, the same way the API does.`,
	SilenceUsage: true,
}

// Execute runs the root command. Cobra has already printed the error.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := "warn"
	if verbose {
		level = "debug"
	}
	return logger.New(cfg.Server.Env, level)
}

// openDatabase loads the configuration and connects to postgres
func openDatabase(ctx context.Context) (*config.Config, database.Service, *zap.Logger, error) {
	cfg := config.Load()

	log, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, db, log, nil
}
