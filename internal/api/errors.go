package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/persistorai/relations/internal/httputil"
	"github.com/persistorai/relations/internal/metrics"
	"github.com/persistorai/relations/internal/models"
)

// Error code constants for standardized API responses.
const (
	ErrCodeInvalidRequest  = "invalid_request"
	ErrCodeNotFound        = "not_found"
	ErrCodeNoElement       = "no_element"
	ErrCodeConflict        = "conflict"
	ErrCodeInternalError   = "internal_error"
	ErrCodeUnavailable     = "store_unavailable"
	ErrCodeValidationError = "validation_error"
)

// respondError writes a standardized JSON error response, pulling the request
// ID from the Gin context (set by the request ID middleware).
func respondError(c *gin.Context, status int, code, message string) {
	metrics.ErrorsTotal.WithLabelValues(code).Inc()
	httputil.RespondError(c, status, code, message)
}

// classifyServiceError maps a service error onto an HTTP status, an error
// code and a client-safe message. Unexpected errors are logged under action.
func classifyServiceError(log *logrus.Logger, action string, err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument), errors.Is(err, models.ErrMissingTarget):
		return http.StatusBadRequest, ErrCodeInvalidRequest, err.Error()
	case errors.Is(err, models.ErrNodeNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "node not found"
	case errors.Is(err, models.ErrDuplicateKey):
		return http.StatusConflict, ErrCodeConflict, "relationship already exists"
	case errors.Is(err, models.ErrStoreUnavailable):
		log.WithError(err).WithField("action", action).Warn("store unavailable")

		return http.StatusServiceUnavailable, ErrCodeUnavailable, "store unavailable"
	default:
		log.WithError(err).WithField("action", action).Error("request failed")

		return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
	}
}

// respondServiceError writes the response for a service error.
func respondServiceError(c *gin.Context, log *logrus.Logger, action string, err error) {
	status, code, message := classifyServiceError(log, action, err)
	respondError(c, status, code, message)
}
