package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"github.com/iheartbourbon/bourbon/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func CreateUser(ctx *gin.Context) {
	var body validation.RegisterRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "User", "create")
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", body.Email).First(&existingUser).Error

	if err == nil {
		ctx.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		internalError(ctx, "check existing user", err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)

	if err != nil {
		internalError(ctx, "hash password", err)
		return
	}

	hash := string(passwordHash)
	newUser := models.User{
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: &hash,
	}

	if err := db.DB.Omit(clause.Associations).Create(&newUser).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}

		internalError(ctx, "create user", err)
		return
	}

	if err := issueSession(ctx, &newUser); err != nil {
		internalError(ctx, "issue session", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"user": types.NewUserResponse(newUser)})
}

// LoginUser answers every credential failure the same way, including
// accounts that only ever signed in through a provider.
func LoginUser(ctx *gin.Context) {
	var body validation.LoginRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "User", "log in")
		return
	}

	var existingUser models.User

	err := db.DB.Where("email = ?", body.Email).First(&existingUser).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		internalError(ctx, "load user", err)
		return
	}

	if !existingUser.HasPassword() {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*existingUser.PasswordHash), []byte(body.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := issueSession(ctx, &existingUser); err != nil {
		internalError(ctx, "issue session", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": types.NewUserResponse(existingUser)})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": types.UserResponse{
			ID:        currentUser.ID,
			Name:      currentUser.Name,
			Email:     currentUser.Email,
			AvatarURL: currentUser.AvatarURL,
		},
	})
}

func LogoutUser(ctx *gin.Context) {
	clearSession(ctx)

	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
