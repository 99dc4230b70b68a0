package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vaultbook/internal/errors"
	"vaultbook/internal/logger"
)

// getUsername extracts the authenticated username from the Gin context.
// Returns ErrUnauthorized if not present.
func getUsername(c *gin.Context) (string, error) {
	username, exists := c.Get("username")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	return username.(string), nil
}

// parseDate parses an optional YYYY-MM-DD request date. An empty string
// yields the zero time, which the store defaults to now.
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, apperrors.ErrInvalidDate
	}
	return date, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
