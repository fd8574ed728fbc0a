package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rpggio/costadvisor/internal/transport"
)

// Config contains server configuration.
type Config struct {
	Services transport.Services
	// Resolver authenticates bearer session tokens on the HTTP transport.
	Resolver      transport.SessionResolver
	TransportMode string // "stdio" or "http"
	// DefaultUserID is the account stdio calls act as.
	DefaultUserID string
	Logger        *slog.Logger
}

// NewServer creates an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "costadvisor",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	// Stdio is local only and acts as the configured user. The user
	// middleware runs first so traffic logs carry the resolved user.
	userMiddleware := authMiddleware(cfg.Resolver)
	if cfg.TransportMode == "stdio" {
		userMiddleware = defaultUserMiddleware(cfg.DefaultUserID)
	}
	server.AddReceivingMiddleware(userMiddleware, trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	return server
}
