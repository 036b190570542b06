package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
)

func GetFeed(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	items, err := services.Feed(ctx.Request.Context(), db.DB, userID)

	if err != nil {
		respondError(ctx, err, "Feed", "view")
		return
	}

	feed := make([]types.EntryResponse, 0, len(items))

	for _, item := range items {
		feed = append(feed, types.NewEntryResponse(item.Entry, item.Groups))
	}

	ctx.JSON(http.StatusOK, gin.H{"feed": feed})
}
