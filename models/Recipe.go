package models

import "time"

// Recipe states how much of one material a single product consumes.
type Recipe struct {
	ID             int64     `gorm:"primaryKey" json:"id"`
	ProductID      int64     `gorm:"not null;index" json:"product_id"`
	MaterialID     int64     `gorm:"not null;index" json:"material_id"`
	QuantityNeeded float64   `gorm:"not null" json:"quantity_needed"`
	Product        *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Material       *Material `gorm:"foreignKey:MaterialID;constraint:OnDelete:RESTRICT" json:"-"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Recipe) TableName() string { return "recipes" }
