package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventplanner/internal/app"
	"eventplanner/internal/config"
	"eventplanner/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setup() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, log)
}

func newServeCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background generation worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()
			return serve(a, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply the database schema before serving (postgres only)")
	return cmd
}

func serve(a *app.App, migrate bool) error {
	log := a.Log
	defer func() { _ = log.Sync() }()

	if migrate && a.DB != nil {
		if err := a.Migrate(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if a.Config.WorkerEnabled {
		host, _ := os.Hostname()
		go a.Worker(host + "-1").Run(ctx)
	}

	srv := &http.Server{
		Addr:              a.Config.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", a.Config.HTTPAddr), zap.String("store", a.Config.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-ch:
	case err := <-errCh:
		return err
	}

	log.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the Postgres schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Migrate(); err != nil {
				return err
			}
			a.Log.Info("schema up to date")
			return nil
		},
	}
}
