package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/gin-gonic/gin"
)

// HealthResponse represents the response from the health check endpoint
type HealthResponse struct {
	Status       string                 `json:"status"`
	Database     string                 `json:"database"`
	LiveBookings int                    `json:"live_bookings"`
	Time         string                 `json:"time"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db    *db.DB
	store *livesync.Store
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database *db.DB, store *livesync.Store) *HealthHandler {
	return &HealthHandler{db: database, store: store}
}

// Check handles the health check endpoint
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Details: make(map[string]interface{}),
	}
	if h.store != nil {
		response.LiveBookings = len(h.store.TrackedBookings())
	}

	if err := h.db.Health(ctx); err != nil {
		response.Status = "degraded"
		response.Database = "unhealthy"
		response.Details["database_error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	response.Database = "healthy"
	c.JSON(http.StatusOK, response)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB, store *livesync.Store) {
	handler := NewHealthHandler(database, store)
	apiGroup.GET("/health", handler.Check)
}
