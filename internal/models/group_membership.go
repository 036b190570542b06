package models

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// GroupMembership.CreatedAt doubles as the join time.
type GroupMembership struct {
	BaseModel

	UserID  string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_group"`
	GroupID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_group;index"`
	Role    string `gorm:"not null;default:member"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Group Group `gorm:"foreignKey:GroupID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
