package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/db"
	"github.com/iheartbourbon/bourbon/internal/services"
	"github.com/iheartbourbon/bourbon/internal/types"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"github.com/iheartbourbon/bourbon/internal/validation"
)

func ListGroups(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	groups, err := services.ListUserGroups(ctx.Request.Context(), db.DB, userID)

	if err != nil {
		respondError(ctx, err, "Group", "view")
		return
	}

	response := make([]types.UserGroupResponse, 0, len(groups))

	for _, g := range groups {
		response = append(response, types.UserGroupResponse{
			GroupResponse: types.NewGroupResponse(g.Group),
			Role:          g.Role,
			MemberCount:   g.MemberCount,
			JoinedAt:      g.JoinedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"groups": response})
}

func CreateGroup(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.GroupRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Group", "create")
		return
	}

	group, err := services.CreateGroup(ctx.Request.Context(), db.DB, userID, body.Name)

	if err != nil {
		respondError(ctx, err, "Group", "create")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"group": types.NewGroupResponse(*group)})
}

func JoinGroup(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var body validation.JoinGroupRequest

	if err := validation.BindJSON(ctx, &body); err != nil {
		respondError(ctx, err, "Group", "join")
		return
	}

	group, alreadyMember, err := services.JoinGroup(ctx.Request.Context(), db.DB, userID, body.Slug)

	if err != nil {
		respondError(ctx, err, "Group", "join")
		return
	}

	if alreadyMember {
		ctx.JSON(http.StatusOK, gin.H{
			"message":       "Already a member",
			"group":         types.NewGroupResponse(*group),
			"alreadyMember": true,
		})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"group":         types.NewGroupResponse(*group),
		"alreadyMember": false,
	})
}

// GetGroupBySlug previews a group before joining, so it is open to any
// signed-in user.
func GetGroupBySlug(ctx *gin.Context) {
	group, stats, err := services.GroupPreviewBySlug(ctx.Request.Context(), db.DB, ctx.Param("slug"))

	if err != nil {
		respondError(ctx, err, "Group", "view")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": types.NewGroupResponse(*group),
		"stats": types.GroupStatsResponse{
			MemberCount: stats.MemberCount,
			EntryCount:  stats.EntryCount,
		},
	})
}

func GetGroup(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	groupID, err := utils.GetParamID(ctx, "id", "Group")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := services.GetGroupDetail(ctx.Request.Context(), db.DB, userID, groupID)

	if err != nil {
		respondError(ctx, err, "Group", "view")
		return
	}

	members := make([]types.MemberResponse, 0, len(detail.Members))

	for _, m := range detail.Members {
		author := types.NewAuthorResponse(m.User)

		if author == nil {
			continue
		}

		members = append(members, types.MemberResponse{
			User:     *author,
			Role:     m.Role,
			JoinedAt: m.CreatedAt,
		})
	}

	entries := make([]types.EntryResponse, 0, len(detail.Entries))

	for _, e := range detail.Entries {
		entries = append(entries, types.NewEntryResponse(e, nil))
	}

	ctx.JSON(http.StatusOK, gin.H{
		"group": types.GroupDetailResponse{
			GroupResponse: types.NewGroupResponse(detail.Group),
			Members:       members,
			Entries:       entries,
			Stats: types.GroupStatsResponse{
				AverageRating: detail.Stats.AverageRating,
				MemberCount:   detail.Stats.MemberCount,
				EntryCount:    detail.Stats.EntryCount,
			},
		},
	})
}
