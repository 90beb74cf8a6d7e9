package models

import (
	"time"

	"gorm.io/gorm"
)

type PetSpecies string

const (
	PetSpeciesDog   PetSpecies = "dog"
	PetSpeciesCat   PetSpecies = "cat"
	PetSpeciesOther PetSpecies = "other"
)

type Pet struct {
	ID        string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string     `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	Name      string     `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Species   PetSpecies `gorm:"column:species;type:varchar(32);not null" json:"species"`
	Breed     string     `gorm:"column:breed;type:varchar(128)" json:"breed"`
	BirthDate *time.Time `gorm:"column:birth_date;default:null" json:"birth_date"`
	WeightKg  *float64   `gorm:"column:weight_kg;default:null" json:"weight_kg"`
	// Notes is free text; sanitized to plain text before storage.
	Notes     string         `gorm:"column:notes;type:text" json:"notes"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Pet) TableName() string { return "pet" }
