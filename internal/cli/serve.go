package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/voxhive/callflow/internal/server"
	"github.com/voxhive/callflow/pkg/observability/promhooks"
	"github.com/voxhive/callflow/pkg/store"
)

// serveCommand creates the serve command for running the workflow server.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		backend   string
		noMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the workflow persistence and validation server",
		Long: `Run the workflow persistence and validation server.

The server stores workflow documents, answers the editor's save and fetch
requests, and validates stored workflows. The store backend comes from the
config file and can be overridden with --store-backend.

Prometheus metrics for requests, caches and editing sessions are exposed
at /metrics unless --no-metrics is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, backend, noMetrics)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&backend, "store-backend", "", "workflow store backend: memory, mongo, postgres (default: from config)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, backend string, noMetrics bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Store.Backend = backend
	}
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendMemory
	}

	logger := loggerFromContext(ctx)

	prog := newProgress(logger)
	st, err := newWorkflowStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()
	prog.done(fmt.Sprintf("Opened %s store", cfg.Store.Backend))

	var gatherer prometheus.Gatherer
	if !noMetrics {
		registry := prometheus.NewRegistry()
		promhooks.Install(registry)
		gatherer = registry
	}

	srv, err := server.New(server.Options{
		Addr:    addr,
		Store:   st,
		Metrics: gatherer,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	printInfo("Serving on %s", StyleLink.Render(displayURL(addr)))
	if !noMetrics {
		printDetail("metrics at %s/metrics", displayURL(addr))
	}
	printNewline()

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// displayURL turns a listen address like ":8787" into a clickable URL.
func displayURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "http://localhost" + addr
	}
	return "http://" + addr
}

// newWorkflowStore opens the workflow store backend selected in the config.
func newWorkflowStore(ctx context.Context, cfg *Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", BackendMemory:
		return store.NewMemoryStore(), nil
	case BackendMongo:
		return store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
	case BackendPostgres:
		pg, err := store.ConnectPG(ctx, cfg.Store.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory, mongo or postgres)", cfg.Store.Backend)
	}
}
