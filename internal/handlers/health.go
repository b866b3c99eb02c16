package handlers

import (
	"net/http"

	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string          `json:"status"`
	Database string          `json:"database"`
	Pass     types.PassState `json:"pass"`
}

// HealthCheck reports store connectivity and the state of the pass runner
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:   "ok",
		Database: "not configured",
		Pass:     types.PassIdle,
	}
	if passRunner != nil {
		response.Pass = passRunner.State()
	}

	if pinger, ok := categoryStore.(types.Pinger); ok {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
	}

	c.JSON(http.StatusOK, response)
}
