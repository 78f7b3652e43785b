package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// GenerateRequest is the body for POST /presentations.
type GenerateRequest struct {
	Topic  string `json:"topic" validate:"required"`
	Slides int    `json:"slides" validate:"required,gt=0,lte=20"`
	JobID  string `json:"job_id,omitempty" validate:"omitempty,uuid4"`
}

// GenerateResponse acknowledges an accepted job.
type GenerateResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// StatusResponse reports a job's progress.
type StatusResponse struct {
	JobID       string `json:"job_id"`
	Topic       string `json:"topic"`
	State       string `json:"state"`
	Path        string `json:"path,omitempty"`
	FailedStage string `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`
}

// handleGenerate accepts a job and runs the pipeline in the
// background. The job id is returned immediately; progress is polled
// via the status endpoint.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	jobID := req.JobID
	if jobID == "" {
		jobID = uuid.New().String()
	}

	s.log.Info("job accepted",
		zap.String("job_id", jobID), zap.String("topic", req.Topic), zap.Int("slides", req.Slides))

	go func() {
		// A failed run is already recorded on the registry; logging is
		// handled inside the runner.
		_, _ = s.runner.Run(context.Background(), jobID, req.Topic, req.Slides)
	}()

	s.jsonResponse(w, http.StatusAccepted, GenerateResponse{JobID: jobID, Status: "started"})
}

// handleStatus returns the state of one job.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "job id is required")
		return
	}

	job, ok := s.runner.Jobs().Get(id)
	if !ok {
		s.errorResponse(w, http.StatusNotFound, "job not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, StatusResponse{
		JobID:       job.ID,
		Topic:       job.Topic,
		State:       string(job.State),
		Path:        job.Path,
		FailedStage: job.FailedStage,
		Error:       job.Error,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
