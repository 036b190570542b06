package models

type Bourbon struct {
	BaseModel

	Name            string `gorm:"not null;index"`
	ImageURL        string
	CreatedByUserID string `gorm:"type:varchar(36);not null;index"`

	// Relationships
	CreatedBy User `gorm:"foreignKey:CreatedByUserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
