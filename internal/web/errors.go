package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ats-go/internal/ats"
)

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ats.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ats.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ats.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ats.ErrObjectStore), errors.Is(err, ats.ErrOperationAborted):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError responds with {"error": ...}. Internal failures are logged and
// reported without detail.
func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// badRequest responds 400 for malformed input that never reached the service.
func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
