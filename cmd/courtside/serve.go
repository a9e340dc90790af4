package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fortuna/courtside/internal/api/rest"
	"github.com/fortuna/courtside/internal/api/websocket"
	"github.com/fortuna/courtside/internal/runs"
	"github.com/fortuna/courtside/internal/scheduler"
)

func (a *app) serveCmd() *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and websocket APIs and run scheduled ingestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), runOnStart)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "Trigger one ingestion as soon as the scheduler starts")
	return cmd
}

func (a *app) serve(ctx context.Context, runOnStart bool) error {
	a.logger.Info("starting", "service", serviceName, "version", serviceVersion)

	db, err := a.openDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	rc, err := a.connectRedis(30)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
	}

	fetcher, release := a.buildFetcher(rc)
	defer release()

	wsServer := websocket.NewServer(a.cfg.WSPort, a.cfg.CORSAllowOrigins, a.logger)
	pipeline := a.buildPipeline(db, fetcher, rc, wsServer)

	runsSvc := runs.NewService(db, pipeline, a.cfg.TeamCode, a.cfg.Season, a.logger)
	if err := runsSvc.Recover(ctx); err != nil {
		return err
	}

	schedConfig := scheduler.DefaultConfig()
	schedConfig.Schedule = a.cfg.IngestCron
	schedConfig.Enabled = a.cfg.EnableScheduler
	schedConfig.RunOnStart = runOnStart

	sched, err := scheduler.NewOrchestrator(runsSvc, schedConfig, a.logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sched.Start(ctx)

	restOpts := rest.Options{
		Port:           a.cfg.RESTPort,
		AllowedOrigins: a.cfg.CORSAllowOrigins,
		DefaultSeason:  a.cfg.Season,
		Scheduler:      sched,
	}
	if rc != nil {
		restOpts.Cache = rc
	}
	restServer := rest.NewServer(restOpts, db, runsSvc, a.logger)

	errCh := make(chan error, 2)
	go func() {
		if err := restServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	go func() {
		if err := wsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.logger.Info("courtside started",
		"rest", "http://0.0.0.0:"+a.cfg.RESTPort,
		"websocket", "ws://0.0.0.0:"+a.cfg.WSPort+"/ws/ingest",
	)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down", "signal", sig.String())
	case serveErr = <-errCh:
		a.logger.Error("server failed, shutting down", "error", serveErr)
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	sched.Stop()
	if err := runsSvc.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("runs service shutdown", "error", err)
	}
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("rest server shutdown", "error", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("websocket server shutdown", "error", err)
	}

	a.logger.Info("courtside stopped")
	return serveErr
}
