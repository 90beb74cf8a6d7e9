package models

import (
	"time"

	"gorm.io/datatypes"
)

// FoodItem is a user-scoped catalog entry for pet food.
type FoodItem struct {
	ID      string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID  string  `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name    string  `gorm:"column:name;type:varchar(256);not null" json:"name"`
	Brand   string  `gorm:"column:brand;type:varchar(128)" json:"brand"`
	Barcode *string `gorm:"column:barcode;type:varchar(64);default:null" json:"barcode"`
	// CaloriesPer100g is kcal per 100 grams; zero means unknown.
	CaloriesPer100g float64 `gorm:"column:calories_per_100g" json:"calories_per_100g"`
	// Nutrition holds macro breakdown (protein_g, fat_g, fiber_g, ...).
	Nutrition datatypes.JSON `gorm:"column:nutrition;type:jsonb;default:'{}'" json:"nutrition"`
	Notes     string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (FoodItem) TableName() string { return "food_item" }
