package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/comparely/catalog-service/internal/pipeline"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

// UpdateStartedResponse is returned when a pass starts in the background.
type UpdateStartedResponse struct {
	RunID   string `json:"runId"`
	Status  string `json:"status"`
	PollURL string `json:"pollUrl"`
}

// TriggerUpdate starts a reconciliation pass
// @Summary Run an ingestion pass
// @Description Reads the newest category and product batch files, reconciles them into the store and archives them. By default the pass runs in the background and 202 is returned; wait=true blocks until it finishes.
// @Tags ingestion
// @Produce json
// @Param wait query bool false "Run synchronously"
// @Success 200 {object} types.IngestionRun
// @Success 202 {object} UpdateStartedResponse
// @Failure 409 {object} ErrorResponse "A pass is already running"
// @Failure 500 {object} types.IngestionRun
// @Router /update [get]
func TriggerUpdate(c *gin.Context) {
	wait, _ := strconv.ParseBool(c.Query("wait"))

	if wait {
		run, err := passRunner.Run(c.Request.Context(), types.TriggerAPI)
		switch {
		case errors.Is(err, pipeline.ErrPassInProgress):
			abortWithError(c, http.StatusConflict, err)
		case err != nil && run == nil:
			abortWithError(c, http.StatusInternalServerError, err)
		case err != nil:
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, run)
		default:
			c.JSON(http.StatusOK, run)
		}
		return
	}

	run, err := passRunner.Start(c.Request.Context(), types.TriggerAPI)
	if errors.Is(err, pipeline.ErrPassInProgress) {
		abortWithError(c, http.StatusConflict, err)
		return
	}
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusAccepted, UpdateStartedResponse{
		RunID:   run.ID,
		Status:  "started",
		PollURL: fmt.Sprintf("/runs/%s", run.ID),
	})
}
