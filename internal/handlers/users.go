package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"github.com/iheartbourbon/bourbon/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func UpdateProfile(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.ProfileRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "User", "update")
		return
	}

	var existingUser models.User

	err = db.DB.Where("email = ? AND id <> ?", body.Email, userID).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(ctx, "check existing email", err)
		return
	}

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		internalError(ctx, "load user", err)
		return
	}

	user.Name = body.Name
	user.Email = body.Email

	updates := map[string]interface{}{
		"name":  user.Name,
		"email": user.Email,
	}

	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
			return
		}

		internalError(ctx, "update profile", err)
		return
	}

	// The session token embeds the email, so it is reissued.
	if err := issueSession(ctx, &user); err != nil {
		internalError(ctx, "issue session", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(user)})
}

func ChangePassword(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.PasswordRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "User", "update")
		return
	}

	var user models.User

	if err := db.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		internalError(ctx, "load user", err)
		return
	}

	if !user.HasPassword() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unable to change password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(body.CurrentPassword)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)

	if err != nil {
		internalError(ctx, "hash password", err)
		return
	}

	if err := db.DB.Model(&user).Update("password_hash", string(passwordHash)).Error; err != nil {
		internalError(ctx, "update password", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func MyEntries(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	entries, err := services.UserEntries(ctx.Request.Context(), db.DB, userID)

	if err != nil {
		respondError(ctx, err, "Entry", "view")
		return
	}

	response := make([]types.EntryResponse, 0, len(entries))

	for _, entry := range entries {
		response = append(response, types.NewEntryResponse(entry, types.LinkedGroups(entry)))
	}

	ctx.JSON(http.StatusOK, gin.H{"entries": response})
}
