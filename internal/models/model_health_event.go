package models

import (
	"time"

	"gorm.io/datatypes"
)

type HealthEventKind string

const (
	HealthEventKindVetVisit    HealthEventKind = "vet_visit"
	HealthEventKindVaccination HealthEventKind = "vaccination"
	HealthEventKindMedication  HealthEventKind = "medication"
	HealthEventKindWeightCheck HealthEventKind = "weight_check"
	HealthEventKindSymptom     HealthEventKind = "symptom"
	HealthEventKindOther       HealthEventKind = "other"
)

// HealthEvent records a single health-related observation for a pet.
// UserID is denormalized from the pet so ownership filters never need a join.
type HealthEvent struct {
	ID         string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string          `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	PetID      string          `gorm:"column:pet_id;type:uuid;not null;index" json:"pet_id"`
	Kind       HealthEventKind `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	OccurredAt time.Time       `gorm:"column:occurred_at;not null" json:"occurred_at"`
	Title      string          `gorm:"column:title;type:varchar(256);not null" json:"title"`
	Notes      string          `gorm:"column:notes;type:text" json:"notes"`
	// Data carries kind-specific fields, e.g. dose for medication or
	// weight for weight_check.
	Data      datatypes.JSON `gorm:"column:data;type:jsonb;default:'{}'" json:"data"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (HealthEvent) TableName() string { return "health_event" }
