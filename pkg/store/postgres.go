package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voxhive/callflow/pkg/api"
	"github.com/voxhive/callflow/pkg/graphio"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS workflows (
    id                 TEXT PRIMARY KEY,
    name               TEXT NOT NULL DEFAULT '',
    definition         JSONB,
    template_variables JSONB,
    configurations     JSONB,
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_workflows_name ON workflows(name);
`

// PGStore persists workflows in PostgreSQL. The graph definition and
// the free-form maps are held as JSONB columns, so the table never
// needs a migration when the wire shape grows a field.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps an existing connection pool.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// ConnectPG opens a pool for the given DSN and verifies it with a ping.
func ConnectPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

// EnsureSchema creates the workflows table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, id string) (*api.Workflow, error) {
	wf := api.Workflow{ID: id}
	var defJSON, tvJSON, cfgJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT name, definition, template_variables, configurations
		   FROM workflows WHERE id = $1`, id).
		Scan(&wf.Name, &defJSON, &tvJSON, &cfgJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query workflow %s: %w", id, err)
	}

	if len(defJSON) > 0 {
		wf.Definition = &graphio.Definition{}
		if err := json.Unmarshal(defJSON, wf.Definition); err != nil {
			return nil, fmt.Errorf("decode definition for %s: %w", id, err)
		}
	}
	if len(tvJSON) > 0 {
		if err := json.Unmarshal(tvJSON, &wf.TemplateVariables); err != nil {
			return nil, fmt.Errorf("decode template variables for %s: %w", id, err)
		}
	}
	if len(cfgJSON) > 0 {
		if err := json.Unmarshal(cfgJSON, &wf.Configurations); err != nil {
			return nil, fmt.Errorf("decode configurations for %s: %w", id, err)
		}
	}
	return &wf, nil
}

func (s *PGStore) Save(ctx context.Context, wf *api.Workflow) error {
	var defJSON, tvJSON, cfgJSON []byte
	var err error
	if wf.Definition != nil {
		if defJSON, err = json.Marshal(wf.Definition); err != nil {
			return fmt.Errorf("encode definition for %s: %w", wf.ID, err)
		}
	}
	if wf.TemplateVariables != nil {
		if tvJSON, err = json.Marshal(wf.TemplateVariables); err != nil {
			return fmt.Errorf("encode template variables for %s: %w", wf.ID, err)
		}
	}
	if wf.Configurations != nil {
		if cfgJSON, err = json.Marshal(wf.Configurations); err != nil {
			return fmt.Errorf("encode configurations for %s: %w", wf.ID, err)
		}
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO workflows (id, name, definition, template_variables, configurations, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW())
		 ON CONFLICT (id) DO UPDATE SET
		     name = EXCLUDED.name,
		     definition = EXCLUDED.definition,
		     template_variables = EXCLUDED.template_variables,
		     configurations = EXCLUDED.configurations,
		     updated_at = NOW()`,
		wf.ID, wf.Name, defJSON, tvJSON, cfgJSON)
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", wf.ID, err)
	}
	return nil
}

func (s *PGStore) List(ctx context.Context) ([]api.WorkflowSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name FROM workflows ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	summaries := []api.WorkflowSummary{}
	for rows.Next() {
		var sum api.WorkflowSummary
		if err := rows.Scan(&sum.ID, &sum.Name); err != nil {
			return nil, fmt.Errorf("scan workflow row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow rows: %w", err)
	}
	return summaries, nil
}

func (s *PGStore) Close(ctx context.Context) error {
	s.pool.Close()
	return nil
}

var _ Store = (*PGStore)(nil)
