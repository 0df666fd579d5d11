package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/voxhive/callflow/pkg/errors"
)

// errorBody is the JSON error envelope. pkg/api maps statuses rather
// than parsing bodies; the envelope is for humans poking the API with
// curl.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.opts.Logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= 500 {
		s.opts.Logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(apperrors.GetCode(err)),
		Message: apperrors.UserMessage(err),
	}})
}

func statusFor(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound),
		apperrors.Is(err, apperrors.ErrCodeNotFound):
		return http.StatusNotFound
	case apperrors.Is(err, apperrors.ErrCodeInvalidInput),
		apperrors.Is(err, apperrors.ErrCodeInvalidWorkflow),
		apperrors.Is(err, apperrors.ErrCodeInvalidFormat):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrCodeUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrCodeForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
