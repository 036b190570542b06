package types

import (
	"time"

	"github.com/iheartbourbon/bourbon/internal/models"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatarUrl"`
}

// AuthorResponse is how other people's accounts appear; it omits email.
type AuthorResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	AvatarURL *string `json:"avatarUrl"`
}

type BourbonResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ImageURL        string    `json:"imageUrl"`
	CreatedByUserID string    `json:"createdByUserId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type EntryResponse struct {
	ID         string           `json:"id"`
	UserID     string           `json:"userId"`
	BourbonID  string           `json:"bourbonId"`
	Rating     int              `json:"rating"`
	IsThumbsUp bool             `json:"isThumbsUp"`
	Comment    string           `json:"comment"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Bourbon    *BourbonResponse `json:"bourbon,omitempty"`
	User       *AuthorResponse  `json:"user,omitempty"`
	Groups     []GroupRef       `json:"groups"`
}

type GroupResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	CreatorID string          `json:"creatorId"`
	Creator   *AuthorResponse `json:"creator,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

type GroupStatsResponse struct {
	AverageRating float64 `json:"averageRating"`
	MemberCount   int64   `json:"memberCount"`
	EntryCount    int64   `json:"entryCount"`
}

type MemberResponse struct {
	User     AuthorResponse `json:"user"`
	Role     string         `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}

type UserGroupResponse struct {
	GroupResponse
	Role        string    `json:"role"`
	MemberCount int64     `json:"memberCount"`
	JoinedAt    time.Time `json:"joinedAt"`
}

type GroupDetailResponse struct {
	GroupResponse
	Members []MemberResponse   `json:"members"`
	Entries []EntryResponse    `json:"entries"`
	Stats   GroupStatsResponse `json:"stats"`
}

func NewUserResponse(u models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
	}
}

func NewAuthorResponse(u models.User) *AuthorResponse {
	if u.ID == "" {
		return nil
	}

	return &AuthorResponse{
		ID:        u.ID,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
	}
}

func NewBourbonResponse(b models.Bourbon) BourbonResponse {
	return BourbonResponse{
		ID:              b.ID,
		Name:            b.Name,
		ImageURL:        b.ImageURL,
		CreatedByUserID: b.CreatedByUserID,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

func NewBourbonResponses(bourbons []models.Bourbon) []BourbonResponse {
	out := make([]BourbonResponse, 0, len(bourbons))

	for _, b := range bourbons {
		out = append(out, NewBourbonResponse(b))
	}

	return out
}

func NewGroupRef(g models.Group) GroupRef {
	return GroupRef{ID: g.ID, Name: g.Name, Slug: g.Slug}
}

// NewEntryResponse renders the groups passed in, not the entry's own links,
// so callers decide which groups a viewer may see.
func NewEntryResponse(e models.Entry, groups []models.Group) EntryResponse {
	resp := EntryResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		BourbonID:  e.BourbonID,
		Rating:     e.Rating,
		IsThumbsUp: e.IsThumbsUp,
		Comment:    e.Comment,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		User:       NewAuthorResponse(e.User),
		Groups:     make([]GroupRef, 0, len(groups)),
	}

	if e.Bourbon.ID != "" {
		bourbon := NewBourbonResponse(e.Bourbon)
		resp.Bourbon = &bourbon
	}

	for _, g := range groups {
		resp.Groups = append(resp.Groups, NewGroupRef(g))
	}

	return resp
}

// LinkedGroups returns every group the entry is linked to. Only use it
// when the viewer is the entry's author.
func LinkedGroups(e models.Entry) []models.Group {
	groups := make([]models.Group, 0, len(e.GroupEntries))

	for _, link := range e.GroupEntries {
		if link.Group.ID != "" {
			groups = append(groups, link.Group)
		}
	}

	return groups
}

func NewGroupResponse(g models.Group) GroupResponse {
	return GroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Slug:      g.Slug,
		CreatorID: g.CreatorID,
		Creator:   NewAuthorResponse(g.Creator),
		CreatedAt: g.CreatedAt,
	}
}
