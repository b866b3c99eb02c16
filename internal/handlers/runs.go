package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

// ListRunsRequest represents query parameters for listing ingestion runs
type ListRunsRequest struct {
	Status string `form:"status" json:"status" binding:"omitempty,oneof=running completed failed" jsonschema:"enum=running,enum=completed,enum=failed"`
	Limit  int    `form:"limit" json:"limit" binding:"omitempty,min=1,max=100" jsonschema:"minimum=1,maximum=100"`
	Offset int    `form:"offset" json:"offset" binding:"min=0" jsonschema:"minimum=0"`
}

// ListRunsResponse represents the response for listing ingestion runs
type ListRunsResponse struct {
	Runs  []types.IngestionRun `json:"runs" jsonschema:"required"`
	Total int                  `json:"total" jsonschema:"required"`
}

// ListRuns returns a paginated list of ingestion runs
// @Summary List ingestion runs
// @Description Returns ingestion runs newest first with an optional status filter
// @Tags ingestion
// @Produce json
// @Param status query string false "Filter by status" Enums(running, completed, failed)
// @Param limit query int false "Number of items to return" default(20) minimum(1) maximum(100)
// @Param offset query int false "Number of items to skip" default(0) minimum(0)
// @Success 200 {object} ListRunsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /runs [get]
func ListRuns(c *gin.Context) {
	var req ListRunsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = 20
	}

	runs, total, err := runStore.ListRuns(c.Request.Context(), types.IngestionStatus(req.Status), req.Limit, req.Offset)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to list runs: %w", err))
		return
	}
	if runs == nil {
		runs = []types.IngestionRun{}
	}
	c.JSON(http.StatusOK, ListRunsResponse{Runs: runs, Total: total})
}

// GetRun returns a single ingestion run
// @Summary Get ingestion run
// @Tags ingestion
// @Produce json
// @Param runId path string true "Run id"
// @Success 200 {object} types.IngestionRun
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /runs/{runId} [get]
func GetRun(c *gin.Context) {
	runID := c.Param("runId")

	run, err := runStore.GetRun(c.Request.Context(), runID)
	if errors.Is(err, types.ErrNotFound) {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("run %s not found", runID))
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, fmt.Errorf("failed to load run: %w", err))
		return
	}
	c.JSON(http.StatusOK, run)
}
