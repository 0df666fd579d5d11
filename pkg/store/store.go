// Package store provides workflow persistence backends for the
// development server.
//
// # Overview
//
// The production persistence service lives elsewhere; callflow only
// talks to it through pkg/api. For local development, demos, and tests,
// internal/server implements the same HTTP surface on top of a [Store].
// Three backends are provided:
//
//   - [MemoryStore]: zero-setup default, state lost on exit.
//   - [MongoStore]: document store, workflows persisted as-is using the
//     bson tags on the wire types.
//   - [PGStore]: relational store, workflow definition held as JSONB.
//
// All backends share the same semantics: Save is a full-document
// upsert, Get on an unknown id returns a WORKFLOW_NOT_FOUND coded
// error, and List returns summaries sorted by name then id. Partial
// updates are the server's job (read, merge, save back), which keeps
// every backend a dumb document store.
package store

import (
	"context"

	"github.com/voxhive/callflow/pkg/api"
	apperrors "github.com/voxhive/callflow/pkg/errors"
)

// Store is the persistence boundary the development server is built on.
type Store interface {
	// Get returns the workflow with the given id, or an error carrying
	// errors.ErrCodeWorkflowNotFound if no such workflow exists.
	Get(ctx context.Context, id string) (*api.Workflow, error)

	// Save upserts the whole workflow document keyed by wf.ID.
	Save(ctx context.Context, wf *api.Workflow) error

	// List returns summaries of all stored workflows, sorted by name
	// then id.
	List(ctx context.Context) ([]api.WorkflowSummary, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return apperrors.New(apperrors.ErrCodeWorkflowNotFound, "workflow %s not found", id)
}
