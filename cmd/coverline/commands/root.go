package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/coverline/pkg/config"
)

var (
	// Global flags
	env     string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coverline",
	Short: "Coverline - auto and home insurance quoting and policy lifecycle",
	Long: `Coverline Unified CLI

Prices auto and home risks from a rating table, binds accepted quotes into
policies and renews them inside the renewal window.

Usage:
  go run ./cmd/coverline [command]

Examples:
  go run ./cmd/coverline api
  go run ./cmd/coverline migrate
  go run ./cmd/coverline rate auto --age 30 --year 2020
  go run ./cmd/coverline scheduler run renewal_reminder
  go run ./cmd/coverline test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig loads the environment config and applies the global flag overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}
