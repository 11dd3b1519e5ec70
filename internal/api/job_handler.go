package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/lazyreader/internal/api/shared"
	"github.com/phrazzld/lazyreader/internal/generation"
	"github.com/phrazzld/lazyreader/internal/service"
	"github.com/phrazzld/lazyreader/internal/task"
)

// SchemaRequest is the optional structured-output constraint of a job
type SchemaRequest struct {
	Name        string          `json:"name" validate:"required,max=64"`
	Description string          `json:"description,omitempty" validate:"max=1024"`
	Document    json.RawMessage `json:"document" validate:"required"`
}

// SubmitJobRequest represents the request body for submitting a completion job
type SubmitJobRequest struct {
	Messages []generation.Message `json:"messages" validate:"required,min=1,dive"`
	Schema   *SchemaRequest       `json:"schema,omitempty"`
}

// SubmitJobResponse is returned when a job has been accepted
type SubmitJobResponse struct {
	JobID string `json:"job_id"`
}

// JobResponse represents the current status of a job
type JobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// JobHandler handles job-related HTTP requests
type JobHandler struct {
	completionService service.CompletionService
	logger            *slog.Logger
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(completionService service.CompletionService, logger *slog.Logger) *JobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobHandler{
		completionService: completionService,
		logger:            logger.With("component", "job_handler"),
	}
}

// SubmitJob handles POST /api/jobs requests
func (h *JobHandler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		status, message := decodeErrorResponse(err)
		shared.RespondWithErrorAndLog(w, r, status, message, err)
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	var schema *generation.Schema
	if req.Schema != nil {
		var err error
		schema, err = generation.NewSchema(req.Schema.Name, req.Schema.Description, req.Schema.Document)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
			return
		}
	}

	id := h.completionService.Submit(req.Messages, schema)
	h.logger.InfoContext(r.Context(), "job accepted",
		"job_id", id,
		"messages", len(req.Messages),
		"structured", schema != nil)

	// 202 Accepted since the completion runs in the background
	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitJobResponse{JobID: id.String()})
}

// GetJob handles GET /api/jobs/{id} requests
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := task.JobID(chi.URLParam(r, "id"))

	status, ok := h.completionService.JobStatus(id)
	if !ok {
		shared.RespondWithErrorAndLog(w, r, http.StatusNotFound,
			GetSafeErrorMessage(task.ErrJobNotFound), task.ErrJobNotFound)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(id, status))
}

// jobToResponse converts a job status to a JobResponse
func jobToResponse(id task.JobID, status task.JobStatus) JobResponse {
	return JobResponse{
		JobID:  id.String(),
		Status: string(status.State),
		Result: status.Result,
		Error:  status.Reason,
	}
}
