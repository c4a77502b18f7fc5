package api

import (
	"io"
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/dapp-craft/daohq-admin-panel/internal/schema"
	"github.com/gin-gonic/gin"
)

// LocationListResponse represents the known venue locations
type LocationListResponse struct {
	Items []*models.Location `json:"items"`
}

// UpdateLocationPreviewRequest represents a location preview update
type UpdateLocationPreviewRequest struct {
	Preview *string `json:"preview"`
}

// LocationHandler handles venue schema API requests
type LocationHandler struct {
	schema      *schema.Service
	systemToken string
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(service *schema.Service, systemToken string) *LocationHandler {
	return &LocationHandler{schema: service, systemToken: systemToken}
}

// requireSystem aborts with 403 unless the request carries the system token
func (h *LocationHandler) requireSystem(c *gin.Context) bool {
	if h.systemToken == "" || c.GetHeader(systemTokenHeader) != h.systemToken {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "System token required",
		})
		return false
	}
	return true
}

// Sync handles POST /api/sync/location-schema?scene=
func (h *LocationHandler) Sync(c *gin.Context) {
	if !h.requireSystem(c) {
		return
	}
	scene := c.Query("scene")
	if scene == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_scene",
			Message: "scene query parameter is required",
		})
		return
	}

	document, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body",
		})
		return
	}

	if err := h.schema.Sync(c.Request.Context(), scene, document); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schema synced"})
}

// List handles GET /api/locations, optionally filtered by scene
func (h *LocationHandler) List(c *gin.Context) {
	var (
		items []*models.Location
		err   error
	)
	if scene := c.Query("scene"); scene != "" {
		items, err = h.schema.ListScene(c.Request.Context(), scene)
	} else {
		items, err = h.schema.List(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, LocationListResponse{Items: items})
}

// DeleteScene handles DELETE /api/locations?scene=
func (h *LocationHandler) DeleteScene(c *gin.Context) {
	if !h.requireSystem(c) {
		return
	}
	scene := c.Query("scene")
	if scene == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_scene",
			Message: "scene query parameter is required",
		})
		return
	}

	if err := h.schema.DeleteScene(c.Request.Context(), scene); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Message: "Scene deleted"})
}

// UpdatePreview handles PATCH /api/locations/:id/preview
func (h *LocationHandler) UpdatePreview(c *gin.Context) {
	locationID := c.Param("id")

	var req UpdateLocationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	if err := h.schema.UpdatePreview(c.Request.Context(), locationID, req.Preview); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preview updated"})
}

func (h *LocationHandler) writeError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Location not found",
		})
	case schema.IsInvalidDocument(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_schema",
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process location request",
		})
	}
}

// SetupLocationRoutes registers venue schema routes
func SetupLocationRoutes(apiGroup *gin.RouterGroup, service *schema.Service, systemToken string) {
	handler := NewLocationHandler(service, systemToken)

	apiGroup.POST("/sync/location-schema", handler.Sync)
	apiGroup.GET("/locations", handler.List)
	apiGroup.DELETE("/locations", handler.DeleteScene)
	apiGroup.PATCH("/locations/:id/preview", handler.UpdatePreview)
}
