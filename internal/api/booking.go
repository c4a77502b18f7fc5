package api

import (
	"context"
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/booking"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gin-gonic/gin"
)

// BookingListResponse represents a paginated booking listing
type BookingListResponse struct {
	Items []*models.Booking `json:"items"`
	Take  int               `json:"take"`
	Skip  int               `json:"skip"`
}

// UpdatePreviewRequest represents a poster image update
type UpdatePreviewRequest struct {
	Preview *string `json:"preview"`
}

// BookingHandler handles booking lifecycle API requests
type BookingHandler struct {
	bookings *booking.Service
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookings *booking.Service) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	owner, ok := requireCaller(c)
	if !ok {
		return
	}

	var req booking.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	created, err := h.bookings.Create(c.Request.Context(), owner, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Get handles GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	b, err := h.bookings.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Update handles PATCH /api/bookings/:id
func (h *BookingHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	owner, ok := requireCaller(c)
	if !ok {
		return
	}

	var req booking.UpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	updated, err := h.bookings.Update(c.Request.Context(), id, owner, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdatePreview handles PATCH /api/bookings/:id/preview
func (h *BookingHandler) UpdatePreview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	owner, ok := requireCaller(c)
	if !ok {
		return
	}

	var req UpdatePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	updated, err := h.bookings.UpdatePreview(c.Request.Context(), id, owner, req.Preview)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	owner, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.bookings.Delete(c.Request.Context(), id, owner); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Message: "Booking deleted"})
}

// ListActive handles GET /api/bookings/active?location=&take=&skip=
func (h *BookingHandler) ListActive(c *gin.Context) {
	h.list(c, h.bookings.ListActive)
}

// ListInactive handles GET /api/bookings/inactive?location=&take=&skip=
func (h *BookingHandler) ListInactive(c *gin.Context) {
	h.list(c, h.bookings.ListInactive)
}

// ListMine handles GET /api/bookings/my?location=&take=&skip=
func (h *BookingHandler) ListMine(c *gin.Context) {
	owner, ok := requireCaller(c)
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

	take := queryInt(c, "take", 0)
	skip := queryInt(c, "skip", 0)
	items, err := h.bookings.ListByOwner(c.Request.Context(), location, owner, take, skip)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BookingListResponse{Items: items, Take: take, Skip: skip})
}

// ContentLimit handles GET /api/bookings/:id/content-limit
func (h *BookingHandler) ContentLimit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, err := h.bookings.ContentLimit(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, limit)
}

// MusicLimit handles GET /api/bookings/:id/music-limit
func (h *BookingHandler) MusicLimit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, err := h.bookings.MusicLimit(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, limit)
}

// list serves the shared location+pagination listing shape
func (h *BookingHandler) list(c *gin.Context, fn func(ctx context.Context, locationID string, take, skip int) ([]*models.Booking, error)) {
	location := c.Query("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_location",
			Message: "location query parameter is required",
		})
		return
	}

	take := queryInt(c, "take", 0)
	skip := queryInt(c, "skip", 0)
	items, err := fn(c.Request.Context(), location, take, skip)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, BookingListResponse{Items: items, Take: take, Skip: skip})
}

func (h *BookingHandler) writeError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Booking not found",
		})
	case booking.IsInvalidDuration(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_duration",
			Message: "Incorrect duration of booking",
		})
	case booking.IsOverlap(err):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "booking_overlap",
			Message: "The requested window overlaps an existing booking",
		})
	case booking.IsNotOwner(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "not_owner",
			Message: "Caller does not own this booking",
		})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to process booking request",
		})
	}
}

// SetupBookingRoutes registers booking lifecycle routes
func SetupBookingRoutes(apiGroup *gin.RouterGroup, bookings *booking.Service) {
	handler := NewBookingHandler(bookings)

	apiGroup.POST("/bookings", handler.Create)
	apiGroup.GET("/bookings/active", handler.ListActive)
	apiGroup.GET("/bookings/inactive", handler.ListInactive)
	apiGroup.GET("/bookings/my", handler.ListMine)
	apiGroup.GET("/bookings/:id", handler.Get)
	apiGroup.PATCH("/bookings/:id", handler.Update)
	apiGroup.PATCH("/bookings/:id/preview", handler.UpdatePreview)
	apiGroup.DELETE("/bookings/:id", handler.Delete)
	apiGroup.GET("/bookings/:id/content-limit", handler.ContentLimit)
	apiGroup.GET("/bookings/:id/music-limit", handler.MusicLimit)
}
