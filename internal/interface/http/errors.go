package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/pkg/response"
	"github.com/oksasatya/go-realestate-listings/pkg/validation"
)

// respondError maps application errors onto HTTP statuses.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var (
		verr  *app.ValidationError
		aerr  *app.AuthorizationError
		nferr *app.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		response.Error[any](c, http.StatusBadRequest, "validation failed", verr.Fields)
	case errors.As(err, &aerr):
		status := http.StatusForbidden
		if c.GetString("userID") == "" {
			status = http.StatusUnauthorized
		}
		response.Error[any](c, status, aerr.Error(), nil)
	case errors.As(err, &nferr):
		response.Error[any](c, http.StatusNotFound, nferr.Error(), nil)
	case errors.Is(err, app.ErrInvalidCredentials):
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, app.ErrInvalidResetToken):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, app.ErrMediaUnavailable):
		response.Error[any](c, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.FullPath(),
			}).Error("request failed")
		}
		response.Error[any](c, http.StatusInternalServerError, "internal server error", nil)
	}
}

// bindJSON decodes the body and writes a 400 on malformed input.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}
