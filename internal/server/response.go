package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/agenthands/loregraph/internal/errors"
)

const internalErrorMessage = "Failed to get graph data"

// APIResponse is the envelope of every graph route.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func abortWithError(c *gin.Context, status int, message string, details map[string]interface{}) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error:   &ErrorInfo{Message: message, Details: details},
	})
}

// respondError translates typed errors into status codes. Untyped and
// internal errors become a generic 500; their cause is only exposed in dev
// mode.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := internalErrorMessage
	details := map[string]interface{}{}

	appErr := apperrors.GetAppError(err)
	if appErr != nil && appErr.Type != apperrors.ErrorTypeInternal {
		status = appErr.HTTPStatus
		message = appErr.Message
		for k, v := range appErr.Details {
			details[k] = v
		}
		if appErr.Field != "" {
			details["field"] = appErr.Field
		}
	}

	fields := []zap.Field{
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		if appErr != nil && appErr.StackTrace != "" {
			fields = append(fields, zap.String("stack", appErr.StackTrace))
		}
		s.Logger.Error("graph request failed", fields...)
	} else {
		s.Logger.Info("graph request rejected", fields...)
	}

	if s.Config.Server.DevMode {
		details["cause"] = err.Error()
	}
	if len(details) == 0 {
		details = nil
	}
	abortWithError(c, status, message, details)
}
