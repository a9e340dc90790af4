// Command courtside scrapes a team's basketball-reference page into a
// relational store and serves what it stored.
//
// Usage:
//
//	courtside run
//	courtside serve
//	courtside report --season 2024
//	courtside migrate
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/config"
)

const (
	serviceName    = "courtside"
	serviceVersion = "1.0.0"
)

// app carries what every subcommand needs once PersistentPreRunE has run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Basketball-reference team page ingestion",
		Version:       serviceVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env if present
			_ = godotenv.Load(".env")

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger()
			slog.SetDefault(a.logger)
			return nil
		},
	}

	root.AddCommand(a.runCmd())
	root.AddCommand(a.serveCmd())
	root.AddCommand(a.reportCmd())
	root.AddCommand(a.migrateCmd())
	return root
}
