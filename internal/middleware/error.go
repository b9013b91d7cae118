package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ahmedaminrashad/horizon-sub000/pkg/errors"
	"github.com/ahmedaminrashad/horizon-sub000/pkg/logger"
)

// ErrorResponse is the error envelope returned to clients.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorHandler renders errors attached to the gin context. Handlers
// call c.Error(err) and return; the status and message come from the
// application error code.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := "internal server error"

		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			status = appErr.StatusCode()
			message = appErr.Message
		}

		if status >= http.StatusInternalServerError && log != nil {
			log.Error(err, "request failed",
				"method", c.Request.Method, "path", c.Request.URL.Path)
		}

		c.JSON(status, ErrorResponse{
			Status:  "error",
			Message: message,
			TraceID: c.GetString(ContextRequestID),
		})
	}
}
