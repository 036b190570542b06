package models

import "time"

// GroupEntry shares an entry with a group. Rows are only written for groups
// the entry's author belongs to.
type GroupEntry struct {
	EntryID   string `gorm:"type:varchar(36);primaryKey"`
	GroupID   string `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time

	// Relationships
	Entry Entry `gorm:"foreignKey:EntryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
