package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Image        *string         `json:"image"`
	CategoriesID *int64          `gorm:"column:categories_id" json:"categories_id"`
	Category     *Category       `gorm:"foreignKey:CategoriesID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (Product) TableName() string { return "products" }
