package api

import (
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/dapp-craft/daohq-admin-panel/internal/music"
	"github.com/gin-gonic/gin"
)

// ApplyMusicOrderRequest represents an explicit playlist order payload
type ApplyMusicOrderRequest struct {
	BookingID  *int64        `json:"booking,omitempty"`
	LocationID string        `json:"location"`
	Order      map[int64]int `json:"order"`
}

// ReorderMusicRequest represents a drag reorder of a playlist
type ReorderMusicRequest struct {
	BookingID  *int64 `json:"booking,omitempty"`
	LocationID string `json:"location"`
	Start      int    `json:"start_order"`
	Drop       int    `json:"drop_order"`
}

// MusicListResponse represents an ordered playlist
type MusicListResponse struct {
	Items []*models.MusicItem `json:"items"`
}

// MusicHandler handles music playlist API requests
type MusicHandler struct {
	music *music.Service
}

// NewMusicHandler creates a new music handler
func NewMusicHandler(service *music.Service) *MusicHandler {
	return &MusicHandler{music: service}
}

// Add handles POST /api/music
func (h *MusicHandler) Add(c *gin.Context) {
	var req music.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	item, err := h.music.Add(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Remove handles DELETE /api/music/:id
func (h *MusicHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.music.Remove(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Message: "Music track deleted"})
}

// List handles GET /api/music?location=&booking=
func (h *MusicHandler) List(c *gin.Context) {
	bookingID, ok := optionalBookingID(c)
	if !ok {
		return
	}
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_location",
			Message: "location query parameter is required",
		})
		return
	}

	items, err := h.music.ListForLocation(c.Request.Context(), bookingID, location)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MusicListResponse{Items: items})
}

// ApplyOrder handles PATCH /api/music/order
func (h *MusicHandler) ApplyOrder(c *gin.Context) {
	var req ApplyMusicOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	err := h.music.ApplyOrder(c.Request.Context(), req.BookingID, req.LocationID, req.Order)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items, err := h.music.ListForLocation(c.Request.Context(), req.BookingID, req.LocationID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MusicListResponse{Items: items})
}

// Reorder handles POST /api/music/reorder
func (h *MusicHandler) Reorder(c *gin.Context) {
	var req ReorderMusicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	items, err := h.music.ReorderByDrag(c.Request.Context(), req.BookingID, req.LocationID, req.Start, req.Drop)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, MusicListResponse{Items: items})
}

func (h *MusicHandler) writeError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Music track not found",
		})
	case music.IsLimitReached(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "limit_reached",
			Message: "Music limit reached for this booking",
		})
	case music.IsInvalidOrder(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_order",
			Message: "Order payload does not match the playlist",
		})
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_music",
			Message: err.Error(),
		})
	}
}

// SetupMusicRoutes registers music playlist routes
func SetupMusicRoutes(apiGroup *gin.RouterGroup, service *music.Service) {
	handler := NewMusicHandler(service)

	apiGroup.POST("/music", handler.Add)
	apiGroup.GET("/music", handler.List)
	apiGroup.DELETE("/music/:id", handler.Remove)
	apiGroup.PATCH("/music/order", handler.ApplyOrder)
	apiGroup.POST("/music/reorder", handler.Reorder)
}
