package middleware

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Success   bool   `json:"success"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

// Abort stops the chain and writes an ErrorBody with status.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{
		Success:   false,
		Code:      code,
		Message:   message,
		RequestID: GetRequestID(c),
	})
}
