package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"github.com/iheartbourbon/bourbon/internal/validation"
	"gorm.io/gorm/clause"
)

const maxImageSize = 5 << 20

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func ListBourbons(ctx *gin.Context) {
	bourbons, err := services.SearchBourbons(ctx.Request.Context(), db.DB, ctx.Query("search"))

	if err != nil {
		respondError(ctx, err, "Bourbon", "search")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"bourbons": types.NewBourbonResponses(bourbons)})
}

func CreateBourbon(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.BourbonRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Bourbon", "create")
		return
	}

	bourbon := models.Bourbon{
		Name:            body.Name,
		ImageURL:        body.ImageURL,
		CreatedByUserID: userID,
	}

	if err := db.DB.Omit(clause.Associations).Create(&bourbon).Error; err != nil {
		internalError(ctx, "create bourbon", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"bourbon": types.NewBourbonResponse(bourbon)})
}

// GetBourbon includes the most recent entries with their authors.
func GetBourbon(ctx *gin.Context) {
	bourbonID, err := utils.GetParamID(ctx, "id", "Bourbon")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bourbon, err := services.FindBourbon(ctx.Request.Context(), db.DB, bourbonID)

	if err != nil {
		respondError(ctx, err, "Bourbon", "view")
		return
	}

	entries, err := services.BourbonEntries(ctx.Request.Context(), db.DB, bourbon.ID, services.RecentBourbonEntries)

	if err != nil {
		respondError(ctx, err, "Bourbon", "view")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"bourbon": types.NewBourbonResponse(*bourbon),
		"entries": entryResponses(entries),
	})
}

func GetBourbonEntries(ctx *gin.Context) {
	bourbonID, err := utils.GetParamID(ctx, "id", "Bourbon")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := services.FindBourbon(ctx.Request.Context(), db.DB, bourbonID); err != nil {
		respondError(ctx, err, "Bourbon", "view")
		return
	}

	entries, err := services.BourbonEntries(ctx.Request.Context(), db.DB, bourbonID, 0)

	if err != nil {
		respondError(ctx, err, "Bourbon", "view")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"entries": entryResponses(entries)})
}

func UpdateBourbon(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bourbonID, err := utils.GetParamID(ctx, "id", "Bourbon")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bourbon, err := services.FindOwnedBourbon(ctx.Request.Context(), db.DB, userID, bourbonID)

	if err != nil {
		respondError(ctx, err, "Bourbon", "update")
		return
	}

	var body validation.BourbonUpdateRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Bourbon", "update")
		return
	}

	bourbon.Name = body.Name
	updates := map[string]interface{}{"name": bourbon.Name}

	// An omitted imageUrl keeps whatever was uploaded.
	if body.ImageURL != nil {
		bourbon.ImageURL = *body.ImageURL
		updates["image_url"] = bourbon.ImageURL
	}

	if err := db.DB.Model(bourbon).Updates(updates).Error; err != nil {
		internalError(ctx, "update bourbon", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"bourbon": types.NewBourbonResponse(*bourbon)})
}

func DeleteBourbon(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bourbonID, err := utils.GetParamID(ctx, "id", "Bourbon")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteBourbon(ctx.Request.Context(), db.DB, userID, bourbonID); err != nil {
		respondError(ctx, err, "Bourbon", "delete")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Bourbon deleted successfully"})
}

// UploadBourbonImage stores a multipart "image" file and points the
// bourbon's imageUrl at it. Only the creator may replace the image.
func UploadBourbonImage(ctx *gin.Context) {
	if images == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	bourbonID, err := utils.GetParamID(ctx, "id", "Bourbon")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bourbon, err := services.FindOwnedBourbon(ctx.Request.Context(), db.DB, userID, bourbonID)

	if err != nil {
		respondError(ctx, err, "Bourbon", "update")
		return
	}

	// Leave room for the multipart framing around the file itself.
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxImageSize+(1<<20))

	fileHeader, err := ctx.FormFile("image")

	if err != nil {
		var tooLarge *http.MaxBytesError

		if errors.As(err, &tooLarge) {
			ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be 5 MB or smaller"})
			return
		}

		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}

	if fileHeader.Size > maxImageSize {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image must be 5 MB or smaller"})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		internalError(ctx, "open upload", err)
		return
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)

	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		internalError(ctx, "read upload", err)
		return
	}

	contentType := http.DetectContentType(head[:n])
	ext, ok := imageExtensions[contentType]

	if !ok {
		msg := "File must be an image"

		if strings.HasPrefix(contentType, "image/") {
			msg = "Unsupported image type"
		}

		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		internalError(ctx, "rewind upload", err)
		return
	}

	key := fmt.Sprintf("bourbons/%s/%s%s", bourbon.ID, uuid.NewString(), ext)
	url, err := images.PutImage(ctx.Request.Context(), key, contentType, file)

	if err != nil {
		internalError(ctx, "store image", err)
		return
	}

	if err := db.DB.Model(bourbon).Update("image_url", url).Error; err != nil {
		internalError(ctx, "save image url", err)
		return
	}

	bourbon.ImageURL = url

	ctx.JSON(http.StatusOK, gin.H{"bourbon": types.NewBourbonResponse(*bourbon)})
}

// entryResponses renders entries without group names; only the author and
// fellow members may see where an entry was shared.
func entryResponses(entries []models.Entry) []types.EntryResponse {
	response := make([]types.EntryResponse, 0, len(entries))

	for _, entry := range entries {
		response = append(response, types.NewEntryResponse(entry, nil))
	}

	return response
}
