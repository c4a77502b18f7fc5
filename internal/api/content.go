package api

import (
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/content"
	"github.com/dapp-craft/daohq-admin-panel/internal/db"
	"github.com/dapp-craft/daohq-admin-panel/internal/models"
	"github.com/gin-gonic/gin"
)

// ApplyContentOrderRequest represents an explicit content order payload
type ApplyContentOrderRequest struct {
	BookingID *int64        `json:"booking,omitempty"`
	SlotID    int64         `json:"slot"`
	Order     map[int64]int `json:"order"`
}

// ReorderContentRequest represents a drag reorder of a slot collection
type ReorderContentRequest struct {
	BookingID *int64 `json:"booking,omitempty"`
	SlotID    int64  `json:"slot"`
	Start     int    `json:"start_order"`
	Drop      int    `json:"drop_order"`
}

// ContentListResponse represents an ordered slot collection
type ContentListResponse struct {
	Items []*models.ContentItem `json:"items"`
}

// ContentHandler handles slot content API requests
type ContentHandler struct {
	contents *content.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(contents *content.Service) *ContentHandler {
	return &ContentHandler{contents: contents}
}

// Add handles POST /api/contents
func (h *ContentHandler) Add(c *gin.Context) {
	var req content.AddInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	item, err := h.contents.Add(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Remove handles DELETE /api/contents/:id
func (h *ContentHandler) Remove(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.contents.Remove(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{Message: "Content item deleted"})
}

// ListForSlot handles GET /api/contents?slot=&booking=
func (h *ContentHandler) ListForSlot(c *gin.Context) {
	bookingID, ok := optionalBookingID(c)
	if !ok {
		return
	}

	if location := c.Query("location"); location != "" {
		grouped, err := h.contents.ListForLocation(c.Request.Context(), bookingID, location)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, grouped)
		return
	}

	slotID := int64(queryInt(c, "slot", 0))
	if slotID == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_slot",
			Message: "slot or location query parameter is required",
		})
		return
	}

	items, err := h.contents.ListForSlot(c.Request.Context(), bookingID, slotID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ContentListResponse{Items: items})
}

// ApplyOrder handles PATCH /api/contents/order
func (h *ContentHandler) ApplyOrder(c *gin.Context) {
	var req ApplyContentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	err := h.contents.ApplyOrder(c.Request.Context(), req.BookingID, req.SlotID, req.Order)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items, err := h.contents.ListForSlot(c.Request.Context(), req.BookingID, req.SlotID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ContentListResponse{Items: items})
}

// Reorder handles POST /api/contents/reorder
func (h *ContentHandler) Reorder(c *gin.Context) {
	var req ReorderContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	items, err := h.contents.ReorderByDrag(c.Request.Context(), req.BookingID, req.SlotID, req.Start, req.Drop)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ContentListResponse{Items: items})
}

func (h *ContentHandler) writeError(c *gin.Context, err error) {
	switch {
	case db.IsNotFound(err):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Content item not found",
		})
	case content.IsLimitReached(err):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "limit_reached",
			Message: "Content limit reached for this booking",
		})
	case content.IsInvalidOrder(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_order",
			Message: "Order payload does not match the collection",
		})
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_content",
			Message: err.Error(),
		})
	}
}

// SetupContentRoutes registers slot content routes
func SetupContentRoutes(apiGroup *gin.RouterGroup, contents *content.Service) {
	handler := NewContentHandler(contents)

	apiGroup.POST("/contents", handler.Add)
	apiGroup.GET("/contents", handler.ListForSlot)
	apiGroup.DELETE("/contents/:id", handler.Remove)
	apiGroup.PATCH("/contents/order", handler.ApplyOrder)
	apiGroup.POST("/contents/reorder", handler.Reorder)
}
