package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/voxhive/callflow/pkg/api"
	apperrors "github.com/voxhive/callflow/pkg/errors"
	"github.com/voxhive/callflow/pkg/flow"
	"github.com/voxhive/callflow/pkg/flow/validate"
	"github.com/voxhive/callflow/pkg/graphio"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if summaries == nil {
		summaries = []api.WorkflowSummary{}
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	wf := &api.Workflow{
		ID:   "wf_" + uuid.NewString(),
		Name: req.Name,
	}
	if err := s.opts.Store.Save(r.Context(), wf); err != nil {
		s.writeError(w, err)
		return
	}
	s.opts.Logger.Info("created workflow", "workflow", wf.ID, "name", wf.Name)
	s.writeJSON(w, http.StatusCreated, wf)
}

func (s *Server) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		s.writeError(w, err)
		return
	}
	wf, err := s.opts.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, wf)
}

// handleSaveWorkflow applies a partial update: the stored workflow is
// loaded, the request's non-nil fields merged in, and the result saved
// back. Merging here keeps every store backend a plain document store.
func (s *Server) handleSaveWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		s.writeError(w, err)
		return
	}

	var req api.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if req.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	wf, err := s.opts.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name != nil {
		wf.Name = *req.Name
	}
	if req.Definition != nil {
		wf.Definition = req.Definition
	}
	if req.TemplateVariables != nil {
		wf.TemplateVariables = req.TemplateVariables
	}
	if req.Configurations != nil {
		wf.Configurations = req.Configurations
	}

	if err := s.opts.Store.Save(r.Context(), wf); err != nil {
		s.writeError(w, err)
		return
	}
	s.opts.Logger.Info("saved workflow", "workflow", id, "graph", req.Definition != nil)
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateWorkflow runs the rule checker against the stored
// definition. Validation always reflects persisted state: the editor
// saves before it expects fresh results.
func (s *Server) handleValidateWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateWorkflowID(id); err != nil {
		s.writeError(w, err)
		return
	}
	wf, err := s.opts.Store.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	g := flow.New()
	if wf.Definition != nil {
		g, err = graphio.ToGraph(*wf.Definition)
		if err != nil {
			s.writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "stored definition does not decode"))
			return
		}
	}

	errs := validate.Check(g)
	if errs == nil {
		errs = []validate.Error{}
	}
	s.writeJSON(w, http.StatusOK, api.ValidationResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	})
}
