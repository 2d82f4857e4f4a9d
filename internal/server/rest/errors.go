package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/libertalk/internal/common"
	"github.com/gin-gonic/gin"
)

// statusFor maps service errors to HTTP statuses. Order matters where
// sentinels wrap each other.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorDuplicateName), errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrorAlreadyVoted):
		return http.StatusConflict
	case errors.Is(err, common.ErrorInvalidCredentials), errors.Is(err, common.ErrorInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorInvalidPayload), errors.Is(err, common.ErrorInvalidOption):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, common.ErrorTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrorPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with {"error": ...}. Unexpected errors are logged and
// reported without detail.
func (s *HTTPServer) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	switch status {
	case http.StatusInternalServerError:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		body["error"] = common.ErrorInternal.Error()
	case http.StatusServiceUnavailable:
		s.logger.Error(c.Request.Context(), "storage unavailable", "path", c.Request.URL.Path, "error", err)
		body["error"] = common.ErrorPersistence.Error()
	case http.StatusForbidden:
		if errors.Is(err, common.ErrorLocked) {
			body["locked"] = true
		}
	}

	c.AbortWithStatusJSON(status, body)
}
