package models

import "time"

// Identity is an account known to the auth provider.
type Identity struct {
	ID               string `gorm:"primaryKey;type:varchar(36)"`
	Email            string `gorm:"uniqueIndex;not null"`
	PasswordHash     string `gorm:"not null"`
	EmailConfirmedAt *time.Time

	// SessionVersion is embedded in issued tokens; bumping it revokes them.
	SessionVersion int `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Identity) TableName() string { return "auth_identities" }

// Confirmed reports whether the identity verified its email address.
func (i Identity) Confirmed() bool {
	return i.EmailConfirmedAt != nil
}
