package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"github.com/iheartbourbon/bourbon/internal/validation"
	"go.uber.org/zap"
)

func CreateEntry(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.EntryRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Entry", "create")
		return
	}

	entry, err := services.CreateEntry(ctx.Request.Context(), db.DB, userID, services.EntryInput{
		BourbonID:  body.BourbonID,
		Rating:     body.Rating,
		IsThumbsUp: body.IsThumbsUp,
		Comment:    body.Comment,
		GroupIDs:   body.GroupIDs,
	})

	if err != nil {
		// The only lookup that can miss on create is the bourbon.
		respondError(ctx, err, "Bourbon", "create")
		return
	}

	notifyFeed(ctx.Request.Context(), entry)

	ctx.JSON(http.StatusCreated, gin.H{"entry": types.NewEntryResponse(*entry, types.LinkedGroups(*entry))})
}

func UpdateEntry(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entryID, err := utils.GetParamID(ctx, "id", "Entry")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Ownership is settled before the body so a stranger learns nothing
	// from validation messages.
	if _, err := services.FindOwnedEntry(ctx.Request.Context(), db.DB, userID, entryID); err != nil {
		respondError(ctx, err, "Entry", "update")
		return
	}

	var body validation.EntryUpdateRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Entry", "update")
		return
	}

	entry, err := services.UpdateEntry(ctx.Request.Context(), db.DB, userID, entryID, services.EntryUpdate{
		Rating:     body.Rating,
		IsThumbsUp: body.IsThumbsUp,
		Comment:    body.Comment,
		GroupIDs:   body.GroupIDs,
	})

	if err != nil {
		respondError(ctx, err, "Entry", "update")
		return
	}

	if body.GroupIDs != nil {
		notifyFeed(ctx.Request.Context(), entry)
	}

	ctx.JSON(http.StatusOK, gin.H{"entry": types.NewEntryResponse(*entry, types.LinkedGroups(*entry))})
}

func DeleteEntry(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entryID, err := utils.GetParamID(ctx, "id", "Entry")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteEntry(ctx.Request.Context(), db.DB, userID, entryID); err != nil {
		respondError(ctx, err, "Entry", "delete")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Entry deleted successfully"})
}

// notifyFeed tells connected group members to refetch their feed. A failure
// here never fails the write that triggered it.
func notifyFeed(ctx context.Context, entry *models.Entry) {
	audience, err := services.EntryAudience(ctx, db.DB, entry)

	if err != nil {
		zap.L().Warn("resolve feed audience", zap.String("entry_id", entry.ID), zap.Error(err))
		return
	}

	BroadcastRefresh(audience)
}
