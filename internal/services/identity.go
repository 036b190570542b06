package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/oauth"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var providerNames = map[string]string{
	models.ProviderGoogle:   "Google",
	models.ProviderFacebook: "Facebook",
	models.ProviderApple:    "Apple",
}

// ReconcileIdentity maps a provider login onto a local account. Accounts are
// matched by email; a matched account only gains the provider id and avatar
// when it has none. created reports whether a new account was made.
func ReconcileIdentity(ctx context.Context, conn *gorm.DB, provider string, identity oauth.Identity) (*models.User, bool, error) {
	column, ok := models.ProviderColumn(provider)

	if !ok {
		return nil, false, fmt.Errorf("unknown provider %q", provider)
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))

	if email == "" {
		return nil, false, ErrMissingEmail
	}

	if identity.ProviderID == "" {
		return nil, false, fmt.Errorf("%s identity has no account id", provider)
	}

	existing, err := findUserByEmail(ctx, conn, email)

	if err != nil {
		return nil, false, err
	}

	if existing != nil {
		user, err := backfillIdentity(ctx, conn, existing, provider, column, identity)
		return user, false, err
	}

	name := utils.SanitizeText(identity.Name)

	if name == "" {
		name = providerNames[provider] + " User"
	}

	user := models.User{
		Email: email,
		Name:  name,
	}
	user.SetProviderID(provider, identity.ProviderID)

	if identity.AvatarURL != "" {
		avatar := identity.AvatarURL
		user.AvatarURL = &avatar
	}

	if err := conn.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("create user: %w", err)
		}

		// Either a concurrent first login created the email, or the
		// provider id already belongs to an account with another email.
		winner, findErr := findUserByEmail(ctx, conn, email)

		if findErr != nil {
			return nil, false, findErr
		}

		if winner == nil {
			return nil, false, fmt.Errorf("%s account is linked to another user: %w", provider, ErrConflict)
		}

		linked, err := backfillIdentity(ctx, conn, winner, provider, column, identity)
		return linked, false, err
	}

	return &user, true, nil
}

func backfillIdentity(ctx context.Context, conn *gorm.DB, user *models.User, provider, column string, identity oauth.Identity) (*models.User, error) {
	updates := map[string]interface{}{}

	if user.ProviderID(provider) == "" {
		updates[column] = identity.ProviderID
	}

	if (user.AvatarURL == nil || *user.AvatarURL == "") && identity.AvatarURL != "" {
		updates["avatar_url"] = identity.AvatarURL
	}

	if len(updates) == 0 {
		return user, nil
	}

	if err := conn.WithContext(ctx).Model(user).Omit(clause.Associations).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%s account is linked to another user: %w", provider, ErrConflict)
		}

		return nil, fmt.Errorf("link %s account: %w", provider, err)
	}

	var refreshed models.User

	if err := conn.WithContext(ctx).Where("id = ?", user.ID).First(&refreshed).Error; err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	return &refreshed, nil
}

func findUserByEmail(ctx context.Context, conn *gorm.DB, email string) (*models.User, error) {
	var user models.User

	err := conn.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &user, nil
}
