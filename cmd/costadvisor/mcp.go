package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/rpggio/costadvisor/internal/app"
	"github.com/rpggio/costadvisor/internal/config"
)

func newMCPCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the MCP tools over stdio as the configured default user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			// Stdout carries JSON-RPC.
			logger, _ := newLogger(os.Stderr, cfg)

			if err := ensureDBDir(cfg.DB.Path); err != nil {
				return fmt.Errorf("failed to prepare database path: %w", err)
			}
			db, err := app.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server, err := app.New(cfg, db, logger).MCPServer(ctx, "stdio")
			if err != nil {
				return err
			}

			logger.Info("starting stdio transport", "user", cfg.MCP.DefaultUserEmail)
			// Run blocks until stdin closes or ctx is canceled.
			if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil {
				return fmt.Errorf("stdio server error: %w", err)
			}
			return nil
		},
	}
}
