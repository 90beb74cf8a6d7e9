package models

import (
	"time"

	"gorm.io/datatypes"
)

type WebhookEventLogStatus string

const (
	WebhookEventLogStatusReceived     WebhookEventLogStatus = "received"
	WebhookEventLogStatusHandled      WebhookEventLogStatus = "handled"
	WebhookEventLogStatusHandleFailed WebhookEventLogStatus = "handle_failed"
)

// WebhookEventLog keeps every verified billing webhook delivery for audit and
// replay debugging, including deliveries whose handler failed.
type WebhookEventLog struct {
	ID            string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider      string                `gorm:"column:provider;type:varchar(64);not null" json:"provider"`
	UserID        *string               `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID       string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	EventType     string                `gorm:"column:event_type;type:varchar(64);not null" json:"event_type"`
	TransactionID string                `gorm:"column:transaction_id;type:varchar(128)" json:"transaction_id"`
	EventTime     time.Time             `gorm:"column:event_time" json:"event_time"`
	Payload       datatypes.JSON        `gorm:"column:payload;type:jsonb" json:"payload"`
	Result        *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status        WebhookEventLogStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (WebhookEventLog) TableName() string { return "webhook_event_log" }
