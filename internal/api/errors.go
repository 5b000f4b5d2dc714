// Package api provides error handling utilities for HTTP APIs
package api

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mantonx/moviecat/internal/logger"
	"github.com/mantonx/moviecat/internal/types"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "request_id"

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error     string                 `json:"error"`
	Code      string                 `json:"code"`
	Details   string                 `json:"details,omitempty"`
	Context   map[string]interface{} `json:"context,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// RespondWithError sends a structured error response
func RespondWithError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDKey)
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}

	appErr := classify(err).WithRequestID(requestID)
	logError(appErr, c.Request.Method, c.FullPath())

	_ = c.Error(err)
	c.JSON(appErr.HTTPStatus, ErrorResponse{
		Error:     appErr.Message,
		Code:      string(appErr.Code),
		Details:   appErr.Details,
		Context:   appErr.Context,
		RequestID: appErr.RequestID,
	})
}

func classify(err error) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var sentinel *types.Sentinel
	if !errors.As(err, &sentinel) {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			e := types.NewAppErrorWithCause(types.ErrorCodeNotFound, "record not found", http.StatusNotFound, err)
			e.Severity = types.SeverityInfo
			return e
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return types.NewConflictError("record already exists", err)
		}
	}

	return types.FromError(err)
}

// RespondWithValidationError sends a validation error response
func RespondWithValidationError(c *gin.Context, message string, details ...string) {
	RespondWithError(c, types.NewValidationError(message, details...))
}

// logError logs the error with appropriate severity
func logError(err *types.AppError, method, route string) {
	fields := []interface{}{
		"error_code", err.Code,
		"error_message", err.Message,
		"request_id", err.RequestID,
		"method", method,
		"route", route,
	}

	if err.Details != "" {
		fields = append(fields, "details", err.Details)
	}
	for k, v := range err.Context {
		fields = append(fields, k, v)
	}
	if err.Cause != nil {
		fields = append(fields, "cause", err.Cause.Error())
	}

	switch err.Severity {
	case types.SeverityCritical:
		logger.Error("critical error", fields...)
	case types.SeverityWarning:
		logger.Warn("request rejected", fields...)
	case types.SeverityInfo:
		logger.Debug("request rejected", fields...)
	default:
		logger.Error("error occurred", fields...)
	}
}

// ErrorMiddleware is a middleware that recovers from panics and handles errors
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var err error
				switch v := r.(type) {
				case error:
					err = v
				case string:
					err = errors.New(v)
				default:
					err = fmt.Errorf("panic: %v", v)
				}

				logger.Error("panic recovered",
					"error", err,
					"request_path", c.Request.URL.Path,
					"request_method", c.Request.Method,
					"stack", string(debug.Stack()),
				)

				RespondWithError(c, types.NewInternalError("internal server error", err))
				c.Abort()
			}
		}()

		c.Next()
	}
}
