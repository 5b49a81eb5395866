package models

import "time"

// RoleAdmin is assigned to every account created through sign-up.
const RoleAdmin = "admin"

// Profile carries the application data of an authenticated user. ID equals
// the auth identity ID.
type Profile struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username  string    `gorm:"not null" json:"username"`
	Role      string    `gorm:"not null;default:admin" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Profile) TableName() string { return "profiles" }
