package sqlite

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "modernc.org/sqlite"
)

// Collections names the document tables. The session store tables are fixed.
type Collections struct {
	Profiles    string `yaml:"profiles"`
	Projects    string `yaml:"projects"`
	Predictions string `yaml:"predictions"`
}

// DefaultCollections returns the default document table names.
func DefaultCollections() Collections {
	return Collections{
		Profiles:    "profiles",
		Projects:    "projects",
		Predictions: "predictions",
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate reports whether every collection name is a plain SQL identifier.
func (c Collections) Validate() error {
	for _, name := range []string{c.Profiles, c.Projects, c.Predictions} {
		if !identifierPattern.MatchString(name) {
			return fmt.Errorf("invalid collection name %q", name)
		}
	}
	if c.Profiles == c.Projects || c.Profiles == c.Predictions || c.Projects == c.Predictions {
		return fmt.Errorf("collection names must be distinct")
	}
	return nil
}

// Option configures a DB.
type Option func(*DB)

// WithCollections overrides the document table names. Empty names keep the default.
func WithCollections(c Collections) Option {
	return func(db *DB) {
		if c.Profiles != "" {
			db.collections.Profiles = c.Profiles
		}
		if c.Projects != "" {
			db.collections.Projects = c.Projects
		}
		if c.Predictions != "" {
			db.collections.Predictions = c.Predictions
		}
	}
}

// DB wraps a SQLite database connection
type DB struct {
	*sql.DB
	collections Collections
}

// New creates a new SQLite database connection
func New(dataSourceName string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{DB: conn, collections: DefaultCollections()}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.collections.Validate(); err != nil {
		conn.Close()
		return nil, err
	}

	// In-memory databases are per connection.
	if dataSourceName == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Collections returns the document table names in use.
func (db *DB) Collections() Collections {
	return db.collections
}

// RunMigrations creates the schema if it does not exist.
func (db *DB) RunMigrations() error {
	c := db.collections
	migration := fmt.Sprintf(`
-- Session store
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Document store
CREATE TABLE IF NOT EXISTS %[1]s (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    role TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS %[2]s (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    company_name TEXT NOT NULL,
    project_name TEXT NOT NULL,
    project_type TEXT NOT NULL,
    location TEXT NOT NULL,
    terrain TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    estimated_budget REAL NOT NULL,
    estimated_duration INTEGER NOT NULL,
    scope_description TEXT NOT NULL DEFAULT '',
    risk_factors TEXT NOT NULL DEFAULT '',
    has_historical_data INTEGER NOT NULL DEFAULT 0,
    risk_score REAL NOT NULL,
    ai_prediction TEXT NOT NULL,
    scenario_analysis TEXT,
    historical_project_count INTEGER,
    historical_avg_duration REAL,
    historical_avg_cost REAL,
    historical_delay_frequency REAL,
    backend_input TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_%[2]s_user_created ON %[2]s(user_id, created_at);

CREATE TABLE IF NOT EXISTS %[3]s (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    project_id TEXT NOT NULL,
    predicted_cost REAL NOT NULL,
    predicted_timeline INTEGER NOT NULL,
    risk_probability REAL NOT NULL,
    factor_breakdown TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY (project_id) REFERENCES %[2]s(id)
);
CREATE INDEX IF NOT EXISTS idx_%[3]s_user_created ON %[3]s(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_%[3]s_project ON %[3]s(project_id);
`, c.Profiles, c.Projects, c.Predictions)

	if _, err := db.Exec(migration); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
