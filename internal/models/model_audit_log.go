package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records a mutating action performed through the API.
type AuditLog struct {
	ID       string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID   *string `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	Action   string  `gorm:"column:action;type:varchar(64);not null" json:"action"`
	Entity   string  `gorm:"column:entity;type:varchar(64);not null" json:"entity"`
	EntityID string  `gorm:"column:entity_id;type:varchar(64)" json:"entity_id"`
	TraceID  string  `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	// Detail is a JSON snapshot of the change, shape varies per action.
	Detail    datatypes.JSON `gorm:"column:detail;type:jsonb;default:'{}'" json:"detail"`
	CreatedAt time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_log" }
