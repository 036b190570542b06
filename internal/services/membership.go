package services

import (
	"context"
	"strings"

	"github.com/iheartbourbon/bourbon/internal/models"
	"gorm.io/gorm"
)

// VerifiedGroupIDs narrows requested to the groups userID belongs to, in
// request order. Blank, repeated, unknown and foreign ids are dropped
// without error. tx may be a transaction so the check and the writes that
// depend on it see the same memberships.
func VerifiedGroupIDs(tx *gorm.DB, userID string, requested []string) ([]string, error) {
	wanted := uniqueIDs(requested)

	if len(wanted) == 0 {
		return []string{}, nil
	}

	var found []string

	err := tx.Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id IN ?", userID, wanted).
		Pluck("group_id", &found).Error

	if err != nil {
		return nil, err
	}

	member := make(map[string]struct{}, len(found))

	for _, id := range found {
		member[id] = struct{}{}
	}

	verified := make([]string, 0, len(found))

	for _, id := range wanted {
		if _, ok := member[id]; ok {
			verified = append(verified, id)
		}
	}

	return verified, nil
}

// MemberGroupIDs lists every group userID belongs to.
func MemberGroupIDs(ctx context.Context, conn *gorm.DB, userID string) ([]string, error) {
	var ids []string

	err := conn.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error

	return ids, err
}

func IsMember(ctx context.Context, conn *gorm.DB, userID, groupID string) (bool, error) {
	var count int64

	err := conn.WithContext(ctx).Model(&models.GroupMembership{}).
		Where("user_id = ? AND group_id = ?", userID, groupID).
		Count(&count).Error

	return count > 0, err
}

// replaceEntryGroups makes groupIDs the exact link set of the entry.
func replaceEntryGroups(tx *gorm.DB, entryID string, groupIDs []string) error {
	stale := tx.Where("entry_id = ?", entryID)

	if len(groupIDs) > 0 {
		stale = stale.Where("group_id NOT IN ?", groupIDs)
	}

	if err := stale.Delete(&models.GroupEntry{}).Error; err != nil {
		return err
	}

	var existing []string

	if err := tx.Model(&models.GroupEntry{}).Where("entry_id = ?", entryID).Pluck("group_id", &existing).Error; err != nil {
		return err
	}

	linked := make(map[string]struct{}, len(existing))

	for _, id := range existing {
		linked[id] = struct{}{}
	}

	var links []models.GroupEntry

	for _, id := range groupIDs {
		if _, ok := linked[id]; !ok {
			links = append(links, models.GroupEntry{EntryID: entryID, GroupID: id})
		}
	}

	if len(links) == 0 {
		return nil
	}

	return tx.Omit("Entry", "Group").Create(&links).Error
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))

	for _, id := range ids {
		id = strings.TrimSpace(id)

		if id == "" {
			continue
		}

		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
