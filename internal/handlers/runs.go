package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/listino/catalog-service/internal/database"
	"github.com/listino/catalog-service/internal/types"
)

// ListRunsRequest represents query parameters for listing pipeline runs
type ListRunsRequest struct {
	Limit int `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
}

// ListRunsResponse represents the response for listing pipeline runs
type ListRunsResponse struct {
	Runs []types.RunLog `json:"runs" jsonschema:"required"`
}

// ListRuns returns the most recent pipeline runs
// @Summary List pipeline runs
// @Description Returns the latest pipeline runs, newest first, with the most recent phase row per run
// @Tags pipeline
// @Accept json
// @Produce json
// @Param limit query int false "Number of runs to return" default(20) minimum(1) maximum(100)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/pipeline/runs [get]
func ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	store := database.NewStore()
	runs, err := store.RecentRuns(c.Request.Context(), req.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch runs"})
		return
	}
	if runs == nil {
		runs = []types.RunLog{}
	}

	c.JSON(http.StatusOK, ListRunsResponse{Runs: runs})
}

// GetRunResponse represents the full phase log of one pipeline run
type GetRunResponse struct {
	RunID  string         `json:"runId" jsonschema:"required"`
	Phases []types.RunLog `json:"phases" jsonschema:"required"`
}

// GetRun returns the phase rows of a single run in execution order
// @Summary Get pipeline run
// @Description Returns every phase row of one pipeline run in execution order
// @Tags pipeline
// @Accept json
// @Produce json
// @Param runId path string true "Run ID"
// @Success 200 {object} GetRunResponse
// @Failure 404 {object} map[string]string "Run not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /internal/pipeline/runs/{runId} [get]
func GetRun(c *gin.Context) {
	runID := c.Param("runId")
	if runID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "runId is required"})
		return
	}

	store := database.NewStore()
	phases, err := store.RunLogs(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch run"})
		return
	}
	if len(phases) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return
	}

	c.JSON(http.StatusOK, GetRunResponse{RunID: runID, Phases: phases})
}
