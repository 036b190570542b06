package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iheartbourbon/bourbon/internal/models"
	"github.com/iheartbourbon/bourbon/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	RecentGroupEntries = 20
	slugAttempts       = 5
)

type GroupStats struct {
	AverageRating float64
	MemberCount   int64
	EntryCount    int64
}

type GroupDetail struct {
	Group   models.Group
	Members []models.GroupMembership
	Entries []models.Entry
	Stats   GroupStats
}

type UserGroup struct {
	Group       models.Group
	Role        string
	MemberCount int64
	JoinedAt    time.Time
}

// CreateGroup creates the group and enrolls its creator as admin. The slug
// carries a random suffix; a collision is retried with a fresh one.
func CreateGroup(ctx context.Context, conn *gorm.DB, userID, name string) (*models.Group, error) {
	name = utils.SanitizeText(name)

	if name == "" {
		return nil, fmt.Errorf("create group: %w", ErrEmptyName)
	}

	base := Slugify(name)

	for attempt := 0; attempt < slugAttempts; attempt++ {
		group := models.Group{
			Name:      name,
			Slug:      base + "-" + slugSuffix(),
			CreatorID: userID,
		}

		err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Omit(clause.Associations).Create(&group).Error; err != nil {
				return err
			}

			membership := models.GroupMembership{
				UserID:  userID,
				GroupID: group.ID,
				Role:    models.RoleAdmin,
			}

			return tx.Omit(clause.Associations).Create(&membership).Error
		})

		if err == nil {
			return &group, nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create group: %w", err)
		}
	}

	return nil, fmt.Errorf("create group: no free slug for %q: %w", base, ErrConflict)
}

// JoinGroup enrolls userID as a member of the group with the given slug.
// alreadyMember is true when no membership was written, including when a
// concurrent join won the race.
func JoinGroup(ctx context.Context, conn *gorm.DB, userID, slug string) (*models.Group, bool, error) {
	group, err := findGroupBySlug(ctx, conn, slug)

	if err != nil {
		return nil, false, err
	}

	member, err := IsMember(ctx, conn, userID, group.ID)

	if err != nil {
		return nil, false, fmt.Errorf("check membership: %w", err)
	}

	if member {
		return group, true, nil
	}

	membership := models.GroupMembership{
		UserID:  userID,
		GroupID: group.ID,
		Role:    models.RoleMember,
	}

	if err := conn.WithContext(ctx).Omit(clause.Associations).Create(&membership).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return group, true, nil
		}

		return nil, false, fmt.Errorf("join group: %w", err)
	}

	return group, false, nil
}

// ComputeGroupStats aggregates over every entry shared with the group.
// Nothing is cached; each call reflects the current rows.
func ComputeGroupStats(ctx context.Context, conn *gorm.DB, groupID string) (GroupStats, error) {
	var stats GroupStats
	var avg sql.NullFloat64

	err := conn.WithContext(ctx).Model(&models.GroupEntry{}).
		Select("AVG(entries.rating)").
		Joins("JOIN entries ON entries.id = group_entries.entry_id").
		Where("group_entries.group_id = ?", groupID).
		Scan(&avg).Error

	if err != nil {
		return stats, fmt.Errorf("average rating: %w", err)
	}

	if avg.Valid {
		stats.AverageRating = RoundRating(avg.Float64)
	}

	if err := conn.WithContext(ctx).Model(&models.GroupMembership{}).Where("group_id = ?", groupID).Count(&stats.MemberCount).Error; err != nil {
		return stats, fmt.Errorf("count members: %w", err)
	}

	if err := conn.WithContext(ctx).Model(&models.GroupEntry{}).Where("group_id = ?", groupID).Count(&stats.EntryCount).Error; err != nil {
		return stats, fmt.Errorf("count entries: %w", err)
	}

	return stats, nil
}

// RoundRating rounds to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

// GetGroupDetail is visible to members only.
func GetGroupDetail(ctx context.Context, conn *gorm.DB, viewerID, groupID string) (*GroupDetail, error) {
	var group models.Group

	if err := conn.WithContext(ctx).Preload("Creator").Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group %s: %w", groupID, ErrNotFound)
		}

		return nil, fmt.Errorf("load group: %w", err)
	}

	member, err := IsMember(ctx, conn, viewerID, group.ID)

	if err != nil {
		return nil, fmt.Errorf("check membership: %w", err)
	}

	if !member {
		return nil, fmt.Errorf("group %s: %w", groupID, ErrForbidden)
	}

	detail := &GroupDetail{Group: group}

	err = conn.WithContext(ctx).
		Preload("User").
		Where("group_id = ?", group.ID).
		Order("created_at ASC").
		Find(&detail.Members).Error

	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	var links []models.GroupEntry

	err = conn.WithContext(ctx).
		Preload("Entry.Bourbon").
		Preload("Entry.User").
		Where("group_id = ?", group.ID).
		Order("created_at DESC").
		Limit(RecentGroupEntries).
		Find(&links).Error

	if err != nil {
		return nil, fmt.Errorf("load group entries: %w", err)
	}

	detail.Entries = make([]models.Entry, 0, len(links))

	for _, link := range links {
		detail.Entries = append(detail.Entries, link.Entry)
	}

	if detail.Stats, err = ComputeGroupStats(ctx, conn, group.ID); err != nil {
		return nil, err
	}

	return detail, nil
}

// GroupPreviewBySlug lets a prospective member see what they are joining.
func GroupPreviewBySlug(ctx context.Context, conn *gorm.DB, slug string) (*models.Group, GroupStats, error) {
	group, err := findGroupBySlug(ctx, conn, slug)

	if err != nil {
		return nil, GroupStats{}, err
	}

	stats, err := ComputeGroupStats(ctx, conn, group.ID)

	if err != nil {
		return nil, GroupStats{}, err
	}

	return group, stats, nil
}

// ListUserGroups returns the caller's groups, most recently joined first.
func ListUserGroups(ctx context.Context, conn *gorm.DB, userID string) ([]UserGroup, error) {
	var memberships []models.GroupMembership

	err := conn.WithContext(ctx).
		Preload("Group").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&memberships).Error

	if err != nil {
		return nil, fmt.Errorf("load memberships: %w", err)
	}

	groups := make([]UserGroup, 0, len(memberships))

	if len(memberships) == 0 {
		return groups, nil
	}

	groupIDs := make([]string, 0, len(memberships))

	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
	}

	var counts []struct {
		GroupID string
		Count   int64
	}

	err = conn.WithContext(ctx).Model(&models.GroupMembership{}).
		Select("group_id, COUNT(*) AS count").
		Where("group_id IN ?", groupIDs).
		Group("group_id").
		Scan(&counts).Error

	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	memberCounts := make(map[string]int64, len(counts))

	for _, c := range counts {
		memberCounts[c.GroupID] = c.Count
	}

	for _, m := range memberships {
		groups = append(groups, UserGroup{
			Group:       m.Group,
			Role:        m.Role,
			MemberCount: memberCounts[m.GroupID],
			JoinedAt:    m.CreatedAt,
		})
	}

	return groups, nil
}

var (
	slugInvalid   = regexp.MustCompile(`[^a-z0-9\s_-]+`)
	slugSeparator = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lower-cases name and joins its words with single hyphens.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSeparator.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		return "group"
	}

	return slug
}

func slugSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

func findGroupBySlug(ctx context.Context, conn *gorm.DB, slug string) (*models.Group, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))

	var group models.Group

	if err := conn.WithContext(ctx).Preload("Creator").Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("group %q: %w", slug, ErrNotFound)
		}

		return nil, fmt.Errorf("load group: %w", err)
	}

	return &group, nil
}
