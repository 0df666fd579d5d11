// Package cli implements the callflow command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/pkg/api"
	"github.com/voxhive/callflow/pkg/buildinfo"
	"github.com/voxhive/callflow/pkg/cache"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/graphio"
	"github.com/voxhive/callflow/pkg/session"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "callflow"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "callflow",
		Short:        "Callflow builds and serves voice-agent call workflows",
		Long:         `Callflow is a CLI for voice-agent call workflows: create and edit workflow graphs in an interactive terminal editor, validate them against the call-flow rules, compute canvas layouts, export them for other tools, and run the persistence server.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+configHint+")")

	// Register all subcommands
	root.AddCommand(c.createCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.getCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// apiClient creates a persistence API client from the config.
func (c *CLI) apiClient(cfg *Config, noCache bool) (*api.Client, error) {
	store, err := newResponseCache(cfg, noCache)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.API.BaseURL, cfg.API.Token, store, 0), nil
}

// newResponseCache picks the HTTP response cache backend. A redis URL in
// the config wins; otherwise responses land in the XDG cache directory,
// falling back to process memory when no home directory exists.
func newResponseCache(cfg *Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.API.RedisCacheURL != "" {
		opts, err := redis.ParseURL(cfg.API.RedisCacheURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis cache url: %w", err)
		}
		return cache.NewRedisCache(redis.NewClient(opts), ""), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewMemoryCache(0), nil
	}
	return cache.NewFileCache(dir)
}

// friendlyError rewrites structured API errors for terminal display.
// Rate-limited responses become a wait hint instead of the raw error chain.
func friendlyError(err error) error {
	var rl *apperrors.RateLimitedError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			return fmt.Errorf("the persistence API is rate limiting requests, retry in %ds", rl.RetryAfter)
		}
		return fmt.Errorf("the persistence API is rate limiting requests, retry shortly")
	}
	return err
}

// newDraftStore picks the editor draft backend from the config.
func newDraftStore(cfg *Config) (session.Store, error) {
	switch cfg.Drafts.Backend {
	case "", BackendFile:
		return session.NewFileStore(cfg.Drafts.Dir)
	case BackendMemory:
		return session.NewMemoryStore(), nil
	case BackendRedis:
		opts, err := redis.ParseURL(cfg.Drafts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse drafts redis url: %w", err)
		}
		return session.NewRedisStore(redis.NewClient(opts), ""), nil
	default:
		return nil, fmt.Errorf("unknown drafts backend %q (want memory, file or redis)", cfg.Drafts.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/callflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Definition Files
// =============================================================================

// readDefinition loads a workflow definition file, selecting the codec by
// extension. Anything that is not .yaml/.yml is treated as JSON. Files
// written by "get --output" carry a name envelope; both shapes load.
func readDefinition(path string) (*flow.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var doc graphio.Document
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		doc, err = graphio.ReadDocumentYAML(f)
	default:
		doc, err = graphio.ReadDocumentJSON(f)
	}
	if err != nil {
		return nil, err
	}
	return graphio.ToGraph(doc.Definition)
}

// writeDocument saves a named workflow envelope, selecting the codec by
// extension like [readDefinition].
func writeDocument(doc graphio.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return graphio.WriteDocumentYAML(doc, f)
	default:
		return graphio.WriteDocumentJSON(doc, f)
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{formatSVG}
	}
	return strings.Split(s, ",")
}
