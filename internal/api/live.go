package api

import (
	"errors"
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/livesync"
	"github.com/gin-gonic/gin"
)

// LiveBookingsResponse represents the currently tracked live bookings
type LiveBookingsResponse struct {
	Items []*livesync.BookingSnapshot `json:"items"`
}

// SwitchContentRequest represents a show or pause command for a live slot
type SwitchContentRequest struct {
	ContentIndex int `json:"content_index"`
}

// LiveHandler handles live booking playback API requests
type LiveHandler struct {
	store      *livesync.Store
	dispatcher *livesync.Dispatcher
}

// NewLiveHandler creates a new live playback handler
func NewLiveHandler(store *livesync.Store, dispatcher *livesync.Dispatcher) *LiveHandler {
	return &LiveHandler{store: store, dispatcher: dispatcher}
}

// List handles GET /api/live/bookings
func (h *LiveHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, LiveBookingsResponse{Items: h.store.Snapshots()})
}

// Slots handles GET /api/live/bookings/:id/slots
func (h *LiveHandler) Slots(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	snapshot, found := h.store.Snapshot(id)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking is not live",
		})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Show handles POST /api/live/bookings/:id/slots/:slot/show
func (h *LiveHandler) Show(c *gin.Context) {
	bookingID, slotID, req, ok := h.switchParams(c)
	if !ok {
		return
	}

	if err := h.dispatcher.Show(c.Request.Context(), bookingID, slotID, req.ContentIndex); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content switched"})
}

// Pause handles POST /api/live/bookings/:id/slots/:slot/pause
func (h *LiveHandler) Pause(c *gin.Context) {
	bookingID, slotID, req, ok := h.switchParams(c)
	if !ok {
		return
	}

	if err := h.dispatcher.TogglePause(c.Request.Context(), bookingID, slotID, req.ContentIndex); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Playback toggled"})
}

func (h *LiveHandler) switchParams(c *gin.Context) (int64, int64, SwitchContentRequest, bool) {
	var req SwitchContentRequest

	bookingID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, req, false
	}
	slotID, ok := pathID(c, "slot")
	if !ok {
		return 0, 0, req, false
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return 0, 0, req, false
	}
	return bookingID, slotID, req, true
}

func (h *LiveHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, livesync.ErrInvalidContentIndex):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_content_index",
			Message: "Content index is out of range",
		})
	case livesync.IsNotVideo(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "not_a_video",
			Message: "Active content is not a video",
		})
	case livesync.IsNoConnection(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_live",
			Message: "Booking is not live",
		})
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Slot or content not found",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to dispatch playback command",
		})
	}
}

// SetupLiveRoutes registers live playback routes
func SetupLiveRoutes(apiGroup *gin.RouterGroup, store *livesync.Store, dispatcher *livesync.Dispatcher) {
	handler := NewLiveHandler(store, dispatcher)

	apiGroup.GET("/live/bookings", handler.List)
	apiGroup.GET("/live/bookings/:id/slots", handler.Slots)
	apiGroup.POST("/live/bookings/:id/slots/:slot/show", handler.Show)
	apiGroup.POST("/live/bookings/:id/slots/:slot/pause", handler.Pause)
}
