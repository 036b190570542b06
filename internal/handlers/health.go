package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
)

func HealthCheck(ctx *gin.Context) {
	status, database := http.StatusOK, "ok"

	if sqlDB, err := db.DB.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
		status, database = http.StatusServiceUnavailable, "unavailable"
	}

	ctx.JSON(status, gin.H{
		"status":    http.StatusText(status),
		"database":  database,
		"message":   "Bourbon API is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
