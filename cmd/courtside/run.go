package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/ingest"
	"github.com/fortuna/courtside/internal/runs"
)

func (a *app) runCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one ingestion for the configured team season",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.runOnce(ctx, strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when the run records any error")
	return cmd
}

func (a *app) runOnce(ctx context.Context, strict bool) error {
	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rc, err := a.connectRedis(1)
	if err != nil {
		a.logger.Warn("continuing without redis", "error", err)
	}
	if rc != nil {
		defer rc.Close()
	}

	fetcher, release := a.buildFetcher(rc)
	defer release()

	svc := runs.NewService(db, a.buildPipeline(db, fetcher, rc), a.cfg.TeamCode, a.cfg.Season, a.logger)
	if err := svc.Recover(ctx); err != nil {
		return err
	}

	run, result, err := svc.RunNow(ctx, ingest.TriggerManual)
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		a.logger.Error("run error", "error", e)
	}
	a.logger.Info("run complete", "run_id", run.RunID, "status", run.Status, "summary", result.Summary(), "duration", result.Duration())

	if strict && len(result.Errors) > 0 {
		return fmt.Errorf("run %d finished %s with %d errors", run.RunID, run.Status, len(result.Errors))
	}
	return nil
}
