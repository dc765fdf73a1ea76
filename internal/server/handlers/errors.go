package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdcare/internal/repository"
	"github.com/mamadbah2/herdcare/internal/service/herd"
	"github.com/mamadbah2/herdcare/internal/service/whatsapp"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, herd.ErrNoDueVaccination):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyDone), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, herd.ErrInvalidRequest), errors.Is(err, whatsapp.ErrInvalidMessage):
		return http.StatusBadRequest
	case errors.Is(err, whatsapp.ErrVerification):
		return http.StatusForbidden
	case errors.Is(err, whatsapp.ErrDelivery):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	case http.StatusBadGateway:
		logger.Error("upstream call failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "unable to send message"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
