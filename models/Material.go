package models

import (
	"strings"
	"time"
)

// Unit is the measure a raw material is stocked in.
type Unit string

const (
	UnitPieces Unit = "pcs"
	UnitML     Unit = "ml"
	UnitGram   Unit = "gr"
	UnitKG     Unit = "kg"
	UnitLiter  Unit = "liter"
	UnitBox    Unit = "box"
	UnitPack   Unit = "pack"
)

// Units lists every accepted unit in display order.
var Units = []Unit{UnitPieces, UnitML, UnitGram, UnitKG, UnitLiter, UnitBox, UnitPack}

var unitLabels = map[Unit]string{
	UnitPieces: "Pieces (pcs)",
	UnitML:     "Milliliter (ml)",
	UnitGram:   "Gram (gr)",
	UnitKG:     "Kilogram (kg)",
	UnitLiter:  "Liter",
	UnitBox:    "Box",
	UnitPack:   "Pack",
}

// ValidUnit reports whether value is one of the supported units.
func ValidUnit(value string) bool {
	_, ok := unitLabels[Unit(value)]
	return ok
}

// ParseUnit normalises value and returns the matching unit.
func ParseUnit(value string) (Unit, bool) {
	u := Unit(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := unitLabels[u]; !ok {
		return "", false
	}
	return u, true
}

// Label returns the human readable name of the unit.
func (u Unit) Label() string {
	if label, ok := unitLabels[u]; ok {
		return label
	}
	return string(u)
}

// Material is a raw ingredient consumed by product recipes.
type Material struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Stock     float64   `gorm:"not null;default:0" json:"stock"`
	Unit      Unit      `gorm:"type:varchar(16);not null" json:"unit"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Material) TableName() string { return "raw_materials" }
