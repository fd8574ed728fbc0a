package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COSTADVISOR_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Inference InferenceConfig `yaml:"inference"`
	Session   SessionConfig   `yaml:"session"`
	MCP       MCPConfig       `yaml:"mcp"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DBConfig locates the document and session store. Collections name the
// document tables.
type DBConfig struct {
	Path        string            `yaml:"path"`
	Collections CollectionsConfig `yaml:"collections"`
}

type CollectionsConfig struct {
	Profiles    string `yaml:"profiles"`
	Projects    string `yaml:"projects"`
	Predictions string `yaml:"predictions"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// SlogLevel maps the configured level name, defaulting to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InferenceConfig points at the external prediction service. A zero
// timeout means calls are bounded only by the request context.
type InferenceConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	CookieName string        `yaml:"cookie_name"`
	// SecureCookie sets the Secure attribute on session cookies.
	SecureCookie bool `yaml:"secure_cookie"`
}

// MCPConfig configures the agent tool surface. DefaultUserEmail is the
// account the stdio transport acts as.
type MCPConfig struct {
	Enabled          bool   `yaml:"enabled"`
	DefaultUserEmail string `yaml:"default_user_email"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "costadvisor.db",
			Collections: CollectionsConfig{
				Profiles:    "profiles",
				Projects:    "projects",
				Predictions: "predictions",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Inference: InferenceConfig{
			BaseURL: "http://localhost:8000",
		},
		Session: SessionConfig{
			TTL:        7 * 24 * time.Hour,
			CookieName: "costadvisor_session",
		},
		MCP: MCPConfig{
			Enabled: true,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

// Path returns the configured config file path, if any.
func Path() string {
	return os.Getenv(EnvPrefix + "CONFIG_PATH")
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv(EnvPrefix + "CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	env := func(name string) string {
		return strings.TrimSpace(getenv(EnvPrefix + name))
	}

	if host := env("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := env("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %sSERVER_PORT: %w", EnvPrefix, err)
		}
		cfg.Server.Port = port
	}
	if dbPath := env("DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if name := env("PROFILES_COLLECTION"); name != "" {
		cfg.DB.Collections.Profiles = name
	}
	if name := env("PROJECTS_COLLECTION"); name != "" {
		cfg.DB.Collections.Projects = name
	}
	if name := env("PREDICTIONS_COLLECTION"); name != "" {
		cfg.DB.Collections.Predictions = name
	}
	if level := env("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if url := env("INFERENCE_URL"); url != "" {
		cfg.Inference.BaseURL = url
	}
	if raw := env("INFERENCE_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %sINFERENCE_TIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Inference.Timeout = timeout
	}
	if raw := env("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %sSESSION_TTL: %w", EnvPrefix, err)
		}
		cfg.Session.TTL = ttl
	}
	if name := env("SESSION_COOKIE"); name != "" {
		cfg.Session.CookieName = name
	}
	if email := env("MCP_USER"); email != "" {
		cfg.MCP.DefaultUserEmail = email
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
