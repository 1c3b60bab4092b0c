package response

import (
	"github.com/gin-gonic/gin"
)

// SuccessResponse wraps successful payloads
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	RequestID string      `json:"requestId,omitempty"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ErrorResponse wraps an ErrorBody
type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// MessageResponse is returned by endpoints that have no payload
type MessageResponse struct {
	Message string `json:"message"`
}

// SendSuccess writes data wrapped in a SuccessResponse
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:      data,
		RequestID: c.GetString("request_id"),
	})
}

// SendMessage writes a payload-less success
func SendMessage(c *gin.Context, status int, message string) {
	SendSuccess(c, status, MessageResponse{Message: message})
}

// SendError writes an ErrorResponse
func SendError(c *gin.Context, status int, code, message string) {
	SendErrorWithDetails(c, status, code, message, "")
}

// SendErrorWithDetails writes an ErrorResponse carrying extra details
func SendErrorWithDetails(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
		RequestID: c.GetString("request_id"),
	})
}

// AbortWithError writes an ErrorResponse and stops the handler chain
func AbortWithError(c *gin.Context, status int, code, message string) {
	SendError(c, status, code, message)
	c.Abort()
}
