package validation

import (
	"strings"

	"github.com/iheartbourbon/bourbon/internal/utils"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Normalize sanitizes before validation so a name made only of markup
// fails the required check.
func (r *RegisterRequest) Normalize() {
	r.Name = utils.SanitizeText(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *RegisterRequest) Messages() map[string]string {
	return map[string]string{
		"name.required":     "Please enter your name.",
		"email.required":    "Please enter your email.",
		"email.email":       "Please enter a valid email.",
		"password.required": "Please enter a password.",
		"password.min":      "Password must be at least 8 characters.",
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Messages() map[string]string {
	return map[string]string{
		"email.required":    "Please enter your email.",
		"email.email":       "Please enter a valid email.",
		"password.required": "Please enter your password.",
	}
}

type ProfileRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
}

func (r *ProfileRequest) Normalize() {
	r.Name = utils.SanitizeText(r.Name)
	r.Email = NormalizeEmail(r.Email)
}

func (r *ProfileRequest) Messages() map[string]string {
	return map[string]string{
		"name.required":  "Name and email are required",
		"email.required": "Name and email are required",
		"email.email":    "Please enter a valid email.",
	}
}

type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

func (r *PasswordRequest) Messages() map[string]string {
	return map[string]string{
		"currentPassword.required": "All password fields are required",
		"newPassword.required":     "All password fields are required",
		"confirmPassword.required": "All password fields are required",
		"confirmPassword.eqfield":  "New passwords do not match",
		"newPassword.min":          "Password must be at least 8 characters",
	}
}

type BourbonRequest struct {
	Name     string `json:"name" binding:"required,max=200"`
	ImageURL string `json:"imageUrl" binding:"omitempty,url"`
}

func (r *BourbonRequest) Normalize() {
	r.Name = utils.SanitizeText(r.Name)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
}

func (r *BourbonRequest) Messages() map[string]string {
	return bourbonMessages
}

// BourbonUpdateRequest keeps the stored image when imageUrl is absent, so a
// rename does not drop an uploaded image. An empty string clears it.
type BourbonUpdateRequest struct {
	Name     string  `json:"name" binding:"required,max=200"`
	ImageURL *string `json:"imageUrl" binding:"omitempty,url|len=0"`
}

func (r *BourbonUpdateRequest) Normalize() {
	r.Name = utils.SanitizeText(r.Name)

	if r.ImageURL != nil {
		trimmed := strings.TrimSpace(*r.ImageURL)
		r.ImageURL = &trimmed
	}
}

func (r *BourbonUpdateRequest) Messages() map[string]string {
	return bourbonMessages
}

var bourbonMessages = map[string]string{
	"name.required":      "Name is required",
	"imageUrl.url":       "Image URL must be a valid URL",
	"imageUrl.url|len=0": "Image URL must be a valid URL",
}

type EntryRequest struct {
	BourbonID  string   `json:"bourbonId" binding:"required"`
	Rating     int      `json:"rating" binding:"required,min=1,max=5"`
	IsThumbsUp bool     `json:"isThumbsUp"`
	Comment    string   `json:"comment" binding:"max=2000"`
	GroupIDs   []string `json:"groupIds"`
}

func (r *EntryRequest) Normalize() {
	r.BourbonID = strings.TrimSpace(r.BourbonID)
	r.Comment = utils.SanitizeText(r.Comment)
}

func (r *EntryRequest) Messages() map[string]string {
	return map[string]string{
		"bourbonId.required": "Bourbon is required",
		"rating.required":    "Rating must be between 1 and 5",
		"rating.min":         "Rating must be between 1 and 5",
		"rating.max":         "Rating must be between 1 and 5",
		"comment.max":        "Comment must be at most 2000 characters",
	}
}

// EntryUpdateRequest leaves nil fields untouched. A nil GroupIDs keeps the
// current group links while an empty list removes them all.
type EntryUpdateRequest struct {
	Rating     *int      `json:"rating" binding:"omitempty,min=1,max=5"`
	IsThumbsUp *bool     `json:"isThumbsUp"`
	Comment    *string   `json:"comment" binding:"omitempty,max=2000"`
	GroupIDs   *[]string `json:"groupIds"`
}

func (r *EntryUpdateRequest) Normalize() {
	if r.Comment != nil {
		comment := utils.SanitizeText(*r.Comment)
		r.Comment = &comment
	}
}

func (r *EntryUpdateRequest) Messages() map[string]string {
	return map[string]string{
		"rating.min":  "Rating must be between 1 and 5",
		"rating.max":  "Rating must be between 1 and 5",
		"comment.max": "Comment must be at most 2000 characters",
	}
}

type GroupRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

func (r *GroupRequest) Normalize() {
	r.Name = utils.SanitizeText(r.Name)
}

func (r *GroupRequest) Messages() map[string]string {
	return map[string]string{
		"name.required": "Name is required",
	}
}

type JoinGroupRequest struct {
	Slug string `json:"slug" binding:"required"`
}

func (r *JoinGroupRequest) Normalize() {
	r.Slug = strings.ToLower(strings.TrimSpace(r.Slug))
}

func (r *JoinGroupRequest) Messages() map[string]string {
	return map[string]string{
		"slug.required": "Group code is required",
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
