package api

import (
	"errors"
	"net/http"

	"github.com/dapp-craft/daohq-admin-panel/internal/logger"
	"github.com/dapp-craft/daohq-admin-panel/internal/realtime"
	"github.com/gin-gonic/gin"
)

// WSTokenResponse represents a freshly minted websocket token
type WSTokenResponse struct {
	Token string `json:"token"`
}

// WSHandler handles websocket token minting and connection upgrades
type WSHandler struct {
	issuer      *realtime.TokenIssuer
	hub         *realtime.Hub
	systemToken string
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(issuer *realtime.TokenIssuer, hub *realtime.Hub, systemToken string) *WSHandler {
	return &WSHandler{issuer: issuer, hub: hub, systemToken: systemToken}
}

// MintToken handles GET /api/signed/ws-token
func (h *WSHandler) MintToken(c *gin.Context) {
	address, ok := requireCaller(c)
	if !ok {
		return
	}

	token, err := h.issuer.Mint(address)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to mint websocket token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to mint websocket token",
		})
		return
	}
	c.JSON(http.StatusOK, WSTokenResponse{Token: token})
}

// Subscribe handles GET /api/ws/booking/:id. The short-lived token minted
// by MintToken rides in the token query parameter; system callers present
// the shared system token instead and bypass the owner check.
func (h *WSHandler) Subscribe(c *gin.Context) {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	token := c.Query("token")
	if h.systemToken != "" && token == h.systemToken {
		h.upgrade(c, bookingID, "", true)
		return
	}

	address, err := h.issuer.Validate(token)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid websocket token"
		if errors.Is(err, realtime.ErrTokenExpired) {
			message = "Websocket token expired"
		}
		c.JSON(status, ErrorResponse{Error: "unauthorized", Message: message})
		return
	}
	h.upgrade(c, bookingID, address, false)
}

func (h *WSHandler) upgrade(c *gin.Context, bookingID int64, address string, system bool) {
	if err := h.hub.Subscribe(c.Writer, c.Request, bookingID, address, system); err != nil {
		logger.Log.Warn().
			Err(err).
			Int64("booking_id", bookingID).
			Msg("Websocket upgrade failed")
	}
}

// SetupWSRoutes registers websocket routes
func SetupWSRoutes(apiGroup *gin.RouterGroup, issuer *realtime.TokenIssuer, hub *realtime.Hub, systemToken string) {
	handler := NewWSHandler(issuer, hub, systemToken)

	apiGroup.GET("/signed/ws-token", handler.MintToken)
	apiGroup.GET("/ws/booking/:id", handler.Subscribe)
	apiGroup.GET("/ws/booking/:id/auth", handler.Subscribe)
}
