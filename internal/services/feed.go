package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/iheartbourbon/bourbon/internal/models"
	"gorm.io/gorm"
)

const FeedPageSize = 20

// FeedItem pairs an entry with the groups through which the viewer can
// see it. Groups the viewer is not in are never included.
type FeedItem struct {
	Entry  models.Entry
	Groups []models.Group
}

// Feed returns the most recent entries by other users shared into any
// group the viewer belongs to.
func Feed(ctx context.Context, conn *gorm.DB, userID string) ([]FeedItem, error) {
	groupIDs, err := MemberGroupIDs(ctx, conn, userID)

	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	if len(groupIDs) == 0 {
		return []FeedItem{}, nil
	}

	shared := conn.Model(&models.GroupEntry{}).Select("entry_id").Where("group_id IN ?", groupIDs)

	var entries []models.Entry

	err = conn.WithContext(ctx).
		Preload("Bourbon").
		Preload("User").
		Preload("GroupEntries.Group").
		Where("user_id <> ?", userID).
		Where("id IN (?)", shared).
		Order("created_at DESC").
		Order("id DESC").
		Limit(FeedPageSize).
		Find(&entries).Error

	if err != nil {
		return nil, fmt.Errorf("load feed: %w", err)
	}

	visible := make(map[string]struct{}, len(groupIDs))

	for _, id := range groupIDs {
		visible[id] = struct{}{}
	}

	items := make([]FeedItem, 0, len(entries))

	for _, entry := range entries {
		groups := make([]models.Group, 0, len(entry.GroupEntries))

		for _, link := range entry.GroupEntries {
			if _, ok := visible[link.GroupID]; ok {
				groups = append(groups, link.Group)
			}
		}

		sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

		entry.GroupEntries = nil
		items = append(items, FeedItem{Entry: entry, Groups: groups})
	}

	return items, nil
}
