package models

type Group struct {
	BaseModel

	Name      string `gorm:"not null"`
	Slug      string `gorm:"uniqueIndex;not null"`
	CreatorID string `gorm:"type:varchar(36);not null;index"`

	// Relationships
	Creator     User              `gorm:"foreignKey:CreatorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Memberships []GroupMembership `gorm:"foreignKey:GroupID"`
}
