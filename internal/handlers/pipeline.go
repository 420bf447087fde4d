package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listino/catalog-service/internal/pipeline"
)

// PipelineHandler exposes run control for the catalog pipeline
type PipelineHandler struct {
	orchestrator *pipeline.Orchestrator
	defaults     pipeline.Options
}

// NewPipelineHandler creates a handler bound to one orchestrator instance
func NewPipelineHandler(orchestrator *pipeline.Orchestrator, defaults pipeline.Options) *PipelineHandler {
	return &PipelineHandler{orchestrator: orchestrator, defaults: defaults}
}

// TriggerRunRequest allows overriding run options per trigger
type TriggerRunRequest struct {
	SkipIngestion  *bool `json:"skipIngestion,omitempty"`
	SkipEnrichment *bool `json:"skipEnrichment,omitempty"`
	SkipAI         *bool `json:"skipAi,omitempty"`
	AIItemLimit    *int  `json:"aiItemLimit,omitempty" jsonschema:"minimum=1"`
	WindowDays     *int  `json:"windowDays,omitempty" jsonschema:"minimum=1"`
}

// TriggerRunResponse is the 202 response when a run is started
type TriggerRunResponse struct {
	RunID   string `json:"runId" jsonschema:"required"`
	Status  string `json:"status" jsonschema:"required"`
	PollURL string `json:"pollUrl" jsonschema:"required"`
}

// TriggerRun starts a pipeline run asynchronously
// @Summary Trigger pipeline run
// @Description Starts a full catalog pipeline run. Only one run can be active at a time.
// @Tags pipeline
// @Accept json
// @Produce json
// @Param request body TriggerRunRequest false "Run option overrides"
// @Success 202 {object} TriggerRunResponse
// @Failure 409 {object} map[string]string "A run is already in progress"
// @Router /internal/admin/pipeline/run [post]
func (h *PipelineHandler) TriggerRun(c *gin.Context) {
	opts := h.defaults

	var req TriggerRunRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.SkipIngestion != nil {
		opts.SkipIngestion = *req.SkipIngestion
	}
	if req.SkipEnrichment != nil {
		opts.SkipEnrichment = *req.SkipEnrichment
	}
	if req.SkipAI != nil {
		opts.SkipAI = *req.SkipAI
	}
	if req.AIItemLimit != nil {
		opts.AIItemLimit = *req.AIItemLimit
	}
	if req.WindowDays != nil {
		opts.WindowDays = *req.WindowDays
	}

	// The run must outlive this request
	runID, err := h.orchestrator.RunAsync(context.Background(), opts)
	if errors.Is(err, pipeline.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "A pipeline run is already in progress"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start run"})
		return
	}

	c.JSON(http.StatusAccepted, TriggerRunResponse{
		RunID:   runID,
		Status:  "running",
		PollURL: "/internal/pipeline/runs/" + runID,
	})
}
