package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/vitals/internal/config"
	"github.com/ehr/vitals/internal/domain/vitals"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vitals-server",
		Short:         "Patient vital signs API server and tools",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringP("file", "f", "", "vitals data file (overrides DATA_FILE)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(statsCmd())
	rootCmd.AddCommand(followUpCmd())
	rootCmd.AddCommand(visitsCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(deleteCmd())
	return rootCmd
}

func newLogger(env, level string) zerolog.Logger {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	if env == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

// loadService builds the vitals service for a command from config and flags.
func loadService(cmd *cobra.Command) (*vitals.Service, *config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadWithFlags(cmd.Flags())
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}
	logger := newLogger(cfg.Env, cfg.LogLevel)
	svc := vitals.NewService(vitals.NewVisitFileRepo(cfg.DataFile), logger)
	return svc, cfg, logger, nil
}
