package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/costadvisor/internal/app"
	"github.com/rpggio/costadvisor/internal/config"
)

const shutdownTimeout = 5 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web views, JSON API and MCP over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			logger, level := newLogger(os.Stdout, cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger, level)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, level *slog.LevelVar) error {
	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return fmt.Errorf("failed to prepare database path: %w", err)
	}
	db, err := app.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	a := app.New(cfg, db, logger)
	handler, err := a.Handler(ctx)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", "addr", httpServer.Addr, "inference", cfg.Inference.BaseURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info("shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if path := config.Path(); path != "" {
		g.Go(func() error {
			return config.Watch(gctx, path, logger, func(next config.Config) {
				if next.Log.SlogLevel() != level.Level() {
					level.Set(next.Log.SlogLevel())
					logger.Info("log level changed", "level", next.Log.SlogLevel())
				}
			})
		})
	}

	return g.Wait()
}
