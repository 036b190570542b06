package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GetParamID reads a UUID path parameter. label names it in error messages,
// e.g. "Bourbon" gives "Invalid Bourbon ID".
func GetParamID(ctx *gin.Context, name, label string) (string, error) {
	id := ctx.Param(name)

	if id == "" {
		return "", errors.New(label + " ID is required")
	}

	parsed, err := uuid.Parse(id)

	if err != nil {
		return "", errors.New("Invalid " + label + " ID")
	}

	return parsed.String(), nil
}
