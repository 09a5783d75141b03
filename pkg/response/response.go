package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tableserve-backend/pkg/apperror"
)

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorBody  `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// ErrorBody carries the stable error code and client-safe message.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes a success envelope with the given status and payload.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Error maps err to an envelope. AppErrors keep their code and status;
// anything else becomes a generic internal error.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.NewInternal(err)
	}

	c.JSON(appErr.HTTPStatus, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		},
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// AbortError writes the error envelope and aborts the middleware chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NotFoundHandler is the fallback for unmatched routes.
func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    "SYS_404",
			Message: "route not found",
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
