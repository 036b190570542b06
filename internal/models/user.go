package models

const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderApple    = "apple"
)

type User struct {
	BaseModel

	Name         string  `gorm:"not null"`
	Email        string  `gorm:"uniqueIndex;not null"`
	PasswordHash *string // nil for accounts created through a provider
	AvatarURL    *string

	GoogleID   *string `gorm:"uniqueIndex"`
	FacebookID *string `gorm:"uniqueIndex"`
	AppleID    *string `gorm:"uniqueIndex"`
}

// ProviderColumn maps a provider name to the column holding its account id.
func ProviderColumn(provider string) (string, bool) {
	switch provider {
	case ProviderGoogle:
		return "google_id", true
	case ProviderFacebook:
		return "facebook_id", true
	case ProviderApple:
		return "apple_id", true
	}

	return "", false
}

func (u *User) ProviderID(provider string) string {
	var id *string

	switch provider {
	case ProviderGoogle:
		id = u.GoogleID
	case ProviderFacebook:
		id = u.FacebookID
	case ProviderApple:
		id = u.AppleID
	}

	if id == nil {
		return ""
	}

	return *id
}

func (u *User) SetProviderID(provider, id string) {
	switch provider {
	case ProviderGoogle:
		u.GoogleID = &id
	case ProviderFacebook:
		u.FacebookID = &id
	case ProviderApple:
		u.AppleID = &id
	}
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
