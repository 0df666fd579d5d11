package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/voxhive/callflow/pkg/api"
	"github.com/voxhive/callflow/pkg/flow/layout"
)

// configHint is the default config location shown in --config help.
const configHint = "~/.config/callflow/config.toml"

// Backend names selectable in the config file.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// Config is the on-disk CLI configuration. Every field has a working
// default, so a missing config file is not an error.
type Config struct {
	API    APIConfig    `toml:"api"`
	Drafts DraftsConfig `toml:"drafts"`
	Store  StoreConfig  `toml:"store"`
	Layout LayoutConfig `toml:"layout"`
}

// APIConfig configures the persistence API client.
type APIConfig struct {
	// BaseURL of the callflow server, e.g. "http://localhost:8787".
	BaseURL string `toml:"base_url"`

	// Token is sent as a bearer token when non-empty.
	Token string `toml:"token"`

	// RedisCacheURL switches the HTTP response cache from the local file
	// cache to redis, e.g. "redis://localhost:6379/0". Useful when
	// several machines share one cache.
	RedisCacheURL string `toml:"redis_cache_url"`
}

// DraftsConfig configures where editor crash-recovery drafts live.
type DraftsConfig struct {
	// Backend is memory, file (default) or redis.
	Backend string `toml:"backend"`

	// Dir is the draft directory for the file backend. Empty selects
	// the draft store's default under the home directory.
	Dir string `toml:"dir"`

	// RedisURL for the redis backend.
	RedisURL string `toml:"redis_url"`
}

// StoreConfig configures the workflow store behind `callflow serve`.
type StoreConfig struct {
	// Backend is memory (default), mongo or postgres.
	Backend string `toml:"backend"`

	// MongoURI and MongoDatabase select the mongo backend target.
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`

	// PostgresDSN selects the postgres backend target.
	PostgresDSN string `toml:"postgres_dsn"`
}

// LayoutConfig overrides the layout engine defaults used by the layout
// command and the editor's auto-layout. Zero values keep the engine
// defaults; flags override both.
type LayoutConfig struct {
	// Direction is TB or LR.
	Direction string `toml:"direction"`

	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	RankGap    float64 `toml:"rank_gap"`
	NodeGap    float64 `toml:"node_gap"`
}

// LayoutOptions merges the config overrides onto the engine defaults.
func (c *Config) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if c.Layout.Direction != "" {
		opts.Direction = layout.Direction(c.Layout.Direction)
	}
	if c.Layout.NodeWidth > 0 {
		opts.NodeWidth = c.Layout.NodeWidth
	}
	if c.Layout.NodeHeight > 0 {
		opts.NodeHeight = c.Layout.NodeHeight
	}
	if c.Layout.RankGap > 0 {
		opts.RankGap = c.Layout.RankGap
	}
	if c.Layout.NodeGap > 0 {
		opts.NodeGap = c.Layout.NodeGap
	}
	return opts
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		API:    APIConfig{BaseURL: api.DefaultBaseURL},
		Drafts: DraftsConfig{Backend: BackendFile},
		Store:  StoreConfig{Backend: BackendMemory, MongoDatabase: appName},
	}
}

// DefaultConfigPath returns the config location using XDG standard
// (~/.config/callflow/config.toml).
func DefaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadConfig reads the TOML config at path, applied on top of defaults.
// An empty path selects the default location, where a missing file just
// yields the defaults; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := DefaultConfigPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// loadConfig loads the config honoring the --config flag.
func (c *CLI) loadConfig() (*Config, error) {
	return LoadConfig(c.configPath)
}
