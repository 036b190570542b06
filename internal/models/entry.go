package models

type Entry struct {
	BaseModel

	UserID     string `gorm:"type:varchar(36);not null;index"`
	BourbonID  string `gorm:"type:varchar(36);not null;index"`
	Rating     int    `gorm:"not null"`
	IsThumbsUp bool   `gorm:"not null;default:false"`
	Comment    string

	// Relationships
	User         User         `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Bourbon      Bourbon      `gorm:"foreignKey:BourbonID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	GroupEntries []GroupEntry `gorm:"foreignKey:EntryID"`
}
