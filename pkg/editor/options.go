package editor

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/voxhive/callflow/pkg/api"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/session"
)

// DefaultValidateAfter is the debounce delay between the last structural
// edit and the validation request it schedules.
const DefaultValidateAfter = 100 * time.Millisecond

// Persister is the slice of the persistence API a session needs.
// *api.Client satisfies it; tests substitute fakes.
type Persister interface {
	SaveWorkflow(ctx context.Context, id string, req api.SaveRequest) error
	ValidateWorkflow(ctx context.Context, id string) (*api.ValidationResult, error)
}

// Options configures a new editing session.
type Options struct {
	// WorkflowID identifies the workflow being edited. Required.
	WorkflowID string

	// Name is the workflow display name; saved alongside the graph and
	// changed via Session.Rename.
	Name string

	// Graph is the initial state. Nil starts from an empty graph. The
	// session snapshots it, so the caller may keep its reference.
	Graph *flow.Graph

	// HistoryLimit bounds retained undo entries. Non-positive selects
	// history.DefaultLimit.
	HistoryLimit int

	// ValidateAfter is the validation debounce delay. Non-positive
	// selects DefaultValidateAfter.
	ValidateAfter time.Duration

	// IDs supplies node and edge ids. Nil selects flow.RandomIDs.
	// Tests inject flow.SequentialIDs for deterministic output.
	IDs flow.IDSource

	// API is the persistence client used by Save and by debounced
	// validation. Nil disables both: Save returns an error and
	// validation requests are never issued.
	API Persister

	// Drafts receives a crash-recovery snapshot after every structural
	// transition. Nil disables draft autosave.
	Drafts session.Store

	// TextInputFocused reports whether keyboard focus is inside a text
	// input, in which case HandleKey ignores editor shortcuts. Nil means
	// never focused.
	TextInputFocused func() bool

	// Logger for session events. Nil selects a silent logger.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks the options and applies defaults for zero
// values. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := apperrors.ValidateWorkflowID(o.WorkflowID); err != nil {
		return err
	}
	if o.Graph == nil {
		o.Graph = flow.New()
	}
	if o.ValidateAfter <= 0 {
		o.ValidateAfter = DefaultValidateAfter
	}
	if o.IDs == nil {
		o.IDs = flow.RandomIDs()
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	o.validated = true
	return nil
}
