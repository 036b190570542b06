package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntryInput struct {
	BourbonID  string
	Rating     int
	IsThumbsUp bool
	Comment    string
	GroupIDs   []string
}

// EntryUpdate applies only its non-nil fields. GroupIDs nil keeps the
// current links; a non-nil empty slice removes them.
type EntryUpdate struct {
	Rating     *int
	IsThumbsUp *bool
	Comment    *string
	GroupIDs   *[]string
}

// CreateEntry records a tasting and shares it with the requested groups
// the author belongs to. Other requested groups are ignored.
func CreateEntry(ctx context.Context, conn *gorm.DB, userID string, in EntryInput) (*models.Entry, error) {
	var bourbon models.Bourbon

	if err := conn.WithContext(ctx).Select("id").Where("id = ?", in.BourbonID).First(&bourbon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bourbon %s: %w", in.BourbonID, ErrNotFound)
		}

		return nil, fmt.Errorf("load bourbon: %w", err)
	}

	entry := models.Entry{
		UserID:     userID,
		BourbonID:  bourbon.ID,
		Rating:     in.Rating,
		IsThumbsUp: in.IsThumbsUp,
		Comment:    utils.SanitizeText(in.Comment),
	}

	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		groupIDs, err := VerifiedGroupIDs(tx, userID, in.GroupIDs)

		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return err
		}

		return replaceEntryGroups(tx, entry.ID, groupIDs)
	})

	if err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}

	return LoadEntry(ctx, conn, entry.ID)
}

// UpdateEntry checks ownership before touching anything, then applies the
// update and the group replacement in one transaction.
func UpdateEntry(ctx context.Context, conn *gorm.DB, userID, entryID string, in EntryUpdate) (*models.Entry, error) {
	entry, err := FindOwnedEntry(ctx, conn, userID, entryID)

	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}

	if in.Rating != nil {
		updates["rating"] = *in.Rating
	}

	if in.IsThumbsUp != nil {
		updates["is_thumbs_up"] = *in.IsThumbsUp
	}

	if in.Comment != nil {
		updates["comment"] = utils.SanitizeText(*in.Comment)
	}

	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(entry).Omit(clause.Associations).Updates(updates).Error; err != nil {
				return err
			}
		}

		if in.GroupIDs == nil {
			return nil
		}

		groupIDs, err := VerifiedGroupIDs(tx, userID, *in.GroupIDs)

		if err != nil {
			return err
		}

		return replaceEntryGroups(tx, entry.ID, groupIDs)
	})

	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	return LoadEntry(ctx, conn, entry.ID)
}

func DeleteEntry(ctx context.Context, conn *gorm.DB, userID, entryID string) error {
	entry, err := FindOwnedEntry(ctx, conn, userID, entryID)

	if err != nil {
		return err
	}

	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", entry.ID).Delete(&models.GroupEntry{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Entry{}, "id = ?", entry.ID).Error
	})

	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	return nil
}

// LoadEntry returns the entry with its bourbon, author and group links.
func LoadEntry(ctx context.Context, conn *gorm.DB, entryID string) (*models.Entry, error) {
	var entry models.Entry

	err := conn.WithContext(ctx).
		Preload("Bourbon").
		Preload("User").
		Preload("GroupEntries.Group").
		Where("id = ?", entryID).
		First(&entry).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
		}

		return nil, fmt.Errorf("load entry: %w", err)
	}

	return &entry, nil
}

// UserEntries lists the caller's own entries, newest first.
func UserEntries(ctx context.Context, conn *gorm.DB, userID string) ([]models.Entry, error) {
	var entries []models.Entry

	err := conn.WithContext(ctx).
		Preload("Bourbon").
		Preload("GroupEntries.Group").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error

	return entries, err
}

// EntryAudience lists the members, other than the author, of every group
// the entry is shared with.
func EntryAudience(ctx context.Context, conn *gorm.DB, entry *models.Entry) ([]string, error) {
	groupIDs := make([]string, 0, len(entry.GroupEntries))

	for _, link := range entry.GroupEntries {
		groupIDs = append(groupIDs, link.GroupID)
	}

	if len(groupIDs) == 0 {
		return nil, nil
	}

	var userIDs []string

	err := conn.WithContext(ctx).Model(&models.GroupMembership{}).
		Distinct("user_id").
		Where("group_id IN ? AND user_id <> ?", groupIDs, entry.UserID).
		Pluck("user_id", &userIDs).Error

	return userIDs, err
}

func FindOwnedEntry(ctx context.Context, conn *gorm.DB, userID, entryID string) (*models.Entry, error) {
	var entry models.Entry

	if err := conn.WithContext(ctx).Where("id = ?", entryID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("entry %s: %w", entryID, ErrNotFound)
		}

		return nil, fmt.Errorf("load entry: %w", err)
	}

	if entry.UserID != userID {
		return nil, fmt.Errorf("entry %s: %w", entryID, ErrForbidden)
	}

	return &entry, nil
}
