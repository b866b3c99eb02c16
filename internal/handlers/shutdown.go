package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Shutdown asks the process to stop gracefully
// @Summary Shut down the service
// @Description Stops accepting requests, waits for a running pass to finish and exits.
// @Tags system
// @Produce json
// @Success 202 {object} map[string]string
// @Router /shutdown [get]
func Shutdown(c *gin.Context) {
	log.Warn().Str("ip", c.ClientIP()).Msg("Shutdown requested over HTTP")
	c.JSON(http.StatusAccepted, gin.H{"status": "shutting down"})
	if shutdownFunc != nil {
		go shutdownFunc()
	}
}
