package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/docvault/internal/middleware"
	appErr "github.com/xxxsen/docvault/internal/pkg/errors"
	"github.com/xxxsen/docvault/internal/pkg/response"
)

func getUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextUserIDKey)
}

func getUserEmail(c *gin.Context) string {
	return c.GetString(middleware.ContextUserEmailKey)
}

func parsePositiveID(c *gin.Context, name, label string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErr.Invalid(label + " must be a positive integer")
	}
	return id, nil
}

// bindJSON decodes and validates the body. Binding details are logged and the
// client gets a fixed message.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		logutil.GetLogger(c.Request.Context()).Info("bind request failed",
			zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		return appErr.Invalid("validation error")
	}
	return nil
}

var errorStatus = map[error]int{
	appErr.ErrInvalid:      http.StatusBadRequest,
	appErr.ErrUnauthorized: http.StatusUnauthorized,
	appErr.ErrForbidden:    http.StatusForbidden,
	appErr.ErrNotFound:     http.StatusNotFound,
	appErr.ErrConflict:     http.StatusConflict,
	appErr.ErrTooMany:      http.StatusTooManyRequests,
}

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	kind := appErr.Kind(err)
	status, ok := errorStatus[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	fields := []zap.Field{
		zap.String("request_id", c.GetString(middleware.ContextRequestIDKey)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int64("user_id", getUserID(c)),
		zap.Int("status", status),
		zap.Error(err),
	}
	logger := logutil.GetLogger(c.Request.Context())
	if status == http.StatusInternalServerError {
		logger.Error("request failed", fields...)
		response.Error(c, status, "internal error")
		return
	}
	logger.Info("request rejected", fields...)
	message := err.Error()
	if err == kind {
		message = http.StatusText(status)
	}
	response.Error(c, status, message)
}
