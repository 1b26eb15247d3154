package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`   // error code, mapped by the frontend
	Message string `json:"message"` // short actionable message
}

// RespondWithError writes a standard error response.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// Shorthand helpers for the common cases.

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

// ServiceUnavailable reports the distinct billing/availability outage. The
// message tells the user the shop itself is down, not that they should retry.
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "The shop is temporarily unavailable. Please check back later."
	}
	RespondWithError(c, http.StatusServiceUnavailable, BackendUnavailable, message)
}

// BadGateway reports a failed call to the storefront backend that the user
// may retry.
func BadGateway(c *gin.Context, errorCode string, message string) {
	if message == "" {
		message = "Failed to sync cart. Please try again."
	}
	RespondWithError(c, http.StatusBadGateway, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong. Please try again shortly."
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}
