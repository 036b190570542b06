package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iheartbourbon/bourbon/internal/models"
	"gorm.io/gorm"
)

const (
	BourbonSearchLimit   = 50
	RecentBourbonEntries = 5
)

// SearchBourbons matches name case-insensitively and orders by name.
func SearchBourbons(ctx context.Context, conn *gorm.DB, query string) ([]models.Bourbon, error) {
	var bourbons []models.Bourbon

	tx := conn.WithContext(ctx).Order("name ASC").Limit(BourbonSearchLimit)

	if query = strings.TrimSpace(query); query != "" {
		tx = tx.Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(query))+"%")
	}

	if err := tx.Find(&bourbons).Error; err != nil {
		return nil, fmt.Errorf("search bourbons: %w", err)
	}

	return bourbons, nil
}

func FindBourbon(ctx context.Context, conn *gorm.DB, bourbonID string) (*models.Bourbon, error) {
	var bourbon models.Bourbon

	if err := conn.WithContext(ctx).Where("id = ?", bourbonID).First(&bourbon).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bourbon %s: %w", bourbonID, ErrNotFound)
		}

		return nil, fmt.Errorf("load bourbon: %w", err)
	}

	return &bourbon, nil
}

// FindOwnedBourbon is FindBourbon plus a creator check.
func FindOwnedBourbon(ctx context.Context, conn *gorm.DB, userID, bourbonID string) (*models.Bourbon, error) {
	bourbon, err := FindBourbon(ctx, conn, bourbonID)

	if err != nil {
		return nil, err
	}

	if bourbon.CreatedByUserID != userID {
		return nil, fmt.Errorf("bourbon %s: %w", bourbonID, ErrForbidden)
	}

	return bourbon, nil
}

// BourbonEntries returns entries for the bourbon with their authors, newest
// first. limit <= 0 returns all of them.
func BourbonEntries(ctx context.Context, conn *gorm.DB, bourbonID string, limit int) ([]models.Entry, error) {
	var entries []models.Entry

	tx := conn.WithContext(ctx).
		Preload("User").
		Where("bourbon_id = ?", bourbonID).
		Order("created_at DESC").
		Order("id DESC")

	if limit > 0 {
		tx = tx.Limit(limit)
	}

	if err := tx.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("load bourbon entries: %w", err)
	}

	return entries, nil
}

// DeleteBourbon removes the bourbon, its entries and their group links
// together.
func DeleteBourbon(ctx context.Context, conn *gorm.DB, userID, bourbonID string) error {
	bourbon, err := FindOwnedBourbon(ctx, conn, userID, bourbonID)

	if err != nil {
		return err
	}

	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entryIDs := tx.Model(&models.Entry{}).Select("id").Where("bourbon_id = ?", bourbon.ID)

		if err := tx.Where("entry_id IN (?)", entryIDs).Delete(&models.GroupEntry{}).Error; err != nil {
			return err
		}

		if err := tx.Where("bourbon_id = ?", bourbon.ID).Delete(&models.Entry{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Bourbon{}, "id = ?", bourbon.ID).Error
	})

	if err != nil {
		return fmt.Errorf("delete bourbon: %w", err)
	}

	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
