// Package api implements the HTTP handlers of the admin panel service.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DeleteResponse represents a successful delete operation
type DeleteResponse struct {
	Message string `json:"message"`
}

// userAddressHeader carries the authenticated caller identity set by the
// auth proxy in front of this service
const userAddressHeader = "X-User-Address"

// systemTokenHeader carries the shared secret for system-only endpoints
const systemTokenHeader = "X-System-Token"

func callerAddress(c *gin.Context) string {
	return c.GetHeader(userAddressHeader)
}

// requireCaller aborts with 401 when no caller identity is present
func requireCaller(c *gin.Context) (string, bool) {
	address := callerAddress(c)
	if address == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Missing caller identity",
		})
		return "", false
	}
	return address, true
}

// pathID parses an int64 path parameter, aborting with 400 on failure
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter with a default
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// optionalBookingID parses the optional booking query parameter; absent
// means the scene's default collection
func optionalBookingID(c *gin.Context) (*int64, bool) {
	raw := c.Query("booking")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_booking",
			Message: "Invalid booking parameter",
		})
		return nil, false
	}
	return &id, true
}
