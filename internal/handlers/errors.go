package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/validation"
	"go.uber.org/zap"
)

// respondError maps service and validation errors onto status codes.
// resource is capitalized ("Entry"); action completes "You are not
// authorized to ... this entry".
func respondError(ctx *gin.Context, err error, resource, action string) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, services.ErrEmptyName):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": resource + " not found"})
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to " + action + " this " + strings.ToLower(resource)})
	case errors.Is(err, services.ErrConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": resource + " conflicts with an existing one"})
	default:
		zap.L().Error("request failed",
			zap.String("resource", resource),
			zap.String("action", action),
			zap.String("path", ctx.FullPath()),
			zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func internalError(ctx *gin.Context, msg string, err error) {
	zap.L().Error(msg, zap.String("path", ctx.FullPath()), zap.Error(err))
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
