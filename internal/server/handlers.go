// internal/server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperrors "loan-intake/internal/common/errors"
	"loan-intake/internal/schema"
	"loan-intake/internal/submission"
	"loan-intake/pkg/formspec"
)

type submitResponse struct {
	SubmissionID          string  `json:"submissionId"`
	Prediction            int     `json:"prediction"`
	Status                string  `json:"status"`
	ConfidenceProbability string  `json:"confidence_probability"`
	Confidence            float64 `json:"confidence"`
	FromCache             bool    `json:"fromCache,omitempty"`
}

type errorResponse struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Errors  []schema.FieldError `json:"errors,omitempty"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var raw map[string]string
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Code:    "BAD_REQUEST",
			Message: "request body must be a JSON object of string field values",
		})
		return
	}

	receipt, err := s.service.Submit(r.Context(), raw)
	if err != nil {
		s.writeSubmitError(w, err)
		return
	}

	confidence, _ := receipt.Result.Confidence()
	writeJSON(w, http.StatusOK, submitResponse{
		SubmissionID:          receipt.SubmissionID,
		Prediction:            receipt.Result.Prediction,
		Status:                receipt.Result.Status,
		ConfidenceProbability: receipt.Result.ConfidenceProbability,
		Confidence:            confidence,
		FromCache:             receipt.FromCache,
	})
}

func (s *Server) writeSubmitError(w http.ResponseWriter, err error) {
	var vf *submission.ValidationFailed
	if errors.As(err, &vf) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:    string(apperrors.ErrCodeValidationFailed),
			Message: "application data failed validation",
			Errors:  vf.Fields,
		})
		return
	}

	stdErr := apperrors.AsStandard(err)
	status := http.StatusInternalServerError
	switch stdErr.Code {
	case apperrors.ErrCodeSubmissionInFlight:
		status = http.StatusConflict
	case apperrors.ErrCodeTransportError:
		status = http.StatusGatewayTimeout
	case apperrors.ErrCodeServiceError, apperrors.ErrCodeMalformedResponse:
		status = http.StatusBadGateway
	}

	writeJSON(w, status, errorResponse{
		Code:    string(stdErr.Code),
		Message: stdErr.Message,
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Tracker().Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 25
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Code:    "BAD_REQUEST",
				Message: "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	records, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("history list failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Code:    string(apperrors.ErrCodeInternal),
			Message: "failed to read submission history",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formspec.Describe())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
