// Package handlers implements the catalog HTTP API.
package handlers

import (
	"time"

	"github.com/comparely/catalog-service/internal/pipeline"
	"github.com/comparely/catalog-service/internal/types"
	"github.com/gin-gonic/gin"
)

var (
	categoryStore types.CategoryStore
	runStore      types.RunStore
	passRunner    *pipeline.Runner
	shutdownFunc  func()
	clock         = time.Now
)

// Dependencies are the services the handlers call.
type Dependencies struct {
	Store  types.CategoryStore
	Runs   types.RunStore
	Runner *pipeline.Runner
	// Shutdown is invoked by GET /shutdown after the response is written.
	Shutdown func()
	// Now stamps product edits (default: time.Now).
	Now func() time.Time
}

// Init wires the handlers. It must be called before the router serves requests.
func Init(deps Dependencies) {
	categoryStore = deps.Store
	runStore = deps.Runs
	passRunner = deps.Runner
	shutdownFunc = deps.Shutdown
	clock = time.Now
	if deps.Now != nil {
		clock = deps.Now
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func abortWithError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error()})
}
