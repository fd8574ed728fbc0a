// Package app wires the store, inference client and domain services into the
// HTTP and MCP surfaces.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rpggio/costadvisor/internal/config"
	"github.com/rpggio/costadvisor/internal/domain/account"
	"github.com/rpggio/costadvisor/internal/domain/dashboard"
	"github.com/rpggio/costadvisor/internal/domain/prediction"
	"github.com/rpggio/costadvisor/internal/domain/project"
	"github.com/rpggio/costadvisor/internal/inference"
	"github.com/rpggio/costadvisor/internal/mcp"
	"github.com/rpggio/costadvisor/internal/metrics"
	"github.com/rpggio/costadvisor/internal/repository"
	"github.com/rpggio/costadvisor/internal/sqlite"
	"github.com/rpggio/costadvisor/internal/transport"
	"github.com/rpggio/costadvisor/internal/web"
)

// App holds the wired services.
type App struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *prometheus.Registry

	Identity    *sqlite.IdentityStore
	Inference   *inference.Client
	Metrics     *metrics.Metrics
	Accounts    *account.Service
	Projects    *project.Service
	Predictions *prediction.Service
	Dashboard   *dashboard.Service
}

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the inference HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *appOptions) { o.httpClient = hc }
}

// New wires services over an open, migrated database.
func New(cfg config.Config, db *sqlite.DB, logger *slog.Logger, opts ...Option) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	var o appOptions
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	clientOpts := []inference.Option{inference.WithMetrics(m), inference.WithLogger(logger)}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, inference.WithHTTPClient(o.httpClient))
	}
	client := inference.NewClient(cfg.Inference.BaseURL, cfg.Inference.Timeout, clientOpts...)

	identity := sqlite.NewIdentityStore(db, cfg.Session.TTL)
	accounts := account.NewService(identity, sqlite.NewProfileRepository(db), logger)
	projects := project.NewService(sqlite.NewProjectRepository(db), client, logger)
	predictions := prediction.NewService(sqlite.NewPredictionRepository(db), projects, logger)

	return &App{
		cfg:         cfg,
		logger:      logger,
		registry:    registry,
		Identity:    identity,
		Inference:   client,
		Metrics:     m,
		Accounts:    accounts,
		Projects:    projects,
		Predictions: predictions,
		Dashboard:   dashboard.NewService(projects, predictions),
	}
}

// Open opens the configured database and runs migrations.
func Open(cfg config.Config) (*sqlite.DB, error) {
	db, err := sqlite.New(cfg.DB.Path, sqlite.WithCollections(sqlite.Collections{
		Profiles:    cfg.DB.Collections.Profiles,
		Projects:    cfg.DB.Collections.Projects,
		Predictions: cfg.DB.Collections.Predictions,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// Services returns the domain services behind every surface.
func (a *App) Services() transport.Services {
	return transport.Services{
		Accounts:    a.Accounts,
		Projects:    a.Projects,
		Predictions: a.Predictions,
		Dashboard:   a.Dashboard,
		Health:      a.Inference,
	}
}

// Cookie returns the session cookie settings.
func (a *App) Cookie() transport.CookieSettings {
	return transport.CookieSettings{Name: a.cfg.Session.CookieName, Secure: a.cfg.Session.SecureCookie}
}

// MCPServer builds the agent tool server for the given transport mode. The
// stdio mode acts as the configured default user, who must exist.
func (a *App) MCPServer(ctx context.Context, mode string) (*sdkmcp.Server, error) {
	cfg := mcp.Config{
		Services:      a.Services(),
		Resolver:      a.Accounts,
		TransportMode: mode,
		Logger:        a.logger,
	}
	if mode == "stdio" {
		if a.cfg.MCP.DefaultUserEmail == "" {
			return nil, errors.New("stdio mode needs mcp.default_user_email")
		}
		user, err := a.Identity.GetUserByEmail(ctx, a.cfg.MCP.DefaultUserEmail)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("mcp default user %q does not exist", a.cfg.MCP.DefaultUserEmail)
		}
		if err != nil {
			return nil, err
		}
		cfg.DefaultUserID = user.ID
	}
	return mcp.NewServer(cfg), nil
}

// Handler builds the HTTP surface: views, JSON API, health, metrics and,
// when enabled, MCP over streamable HTTP.
func (a *App) Handler(ctx context.Context) (http.Handler, error) {
	views, err := web.NewHandler(a.Services(), a.Cookie(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build views: %w", err)
	}

	opts := transport.Options{
		Cookie:         a.Cookie(),
		Metrics:        a.Metrics,
		MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
		Web:            views,
		Logger:         a.logger,
	}

	if a.cfg.MCP.Enabled {
		server, err := a.MCPServer(ctx, "http")
		if err != nil {
			return nil, err
		}
		opts.MCP = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return server },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		)
	}

	return transport.NewServer(a.Services(), opts), nil
}
