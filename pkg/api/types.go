package api

import (
	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/graphio"
)

// Workflow is the persistence API's workflow resource. The bson tags
// let pkg/store persist the same shape without a parallel document
// type.
type Workflow struct {
	ID                string              `json:"id" bson:"_id"`
	Name              string              `json:"name" bson:"name"`
	Definition        *graphio.Definition `json:"definition,omitempty" bson:"definition,omitempty"`
	TemplateVariables map[string]string   `json:"template_variables,omitempty" bson:"template_variables,omitempty"`
	Configurations    map[string]any      `json:"configurations,omitempty" bson:"configurations,omitempty"`
}

// SaveRequest is a partial workflow update. Nil fields are omitted from
// the request body and left untouched by the server, so a rename can be
// saved without retransmitting the graph.
type SaveRequest struct {
	Name              *string             `json:"name,omitempty"`
	Definition        *graphio.Definition `json:"definition,omitempty"`
	TemplateVariables map[string]string   `json:"template_variables,omitempty"`
	Configurations    map[string]any      `json:"configurations,omitempty"`
}

// Empty reports whether the request would change nothing.
func (r SaveRequest) Empty() bool {
	return r.Name == nil && r.Definition == nil &&
		r.TemplateVariables == nil && r.Configurations == nil
}

// ValidationResult is the validator's verdict for one workflow.
type ValidationResult struct {
	IsValid bool             `json:"is_valid"`
	Errors  []validate.Error `json:"errors"`
}

// WorkflowSummary is one entry in a workflow listing.
type WorkflowSummary struct {
	ID   string `json:"id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}
