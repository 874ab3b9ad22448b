package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

func RespondWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// RespondWithServiceError maps a service-layer error onto the HTTP
// surface. Unexpected errors are reported generically so persistence
// details never leak to the caller.
func RespondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidHost),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidInput):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTenantNotFound),
		errors.Is(err, ErrServiceNotFound),
		errors.Is(err, ErrNotFound):
		RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrCrossTenant):
		RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrConflict):
		RespondWithError(c, http.StatusConflict, err.Error())
	default:
		RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
