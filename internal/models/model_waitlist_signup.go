package models

import "time"

type WaitlistSignup struct {
	ID    string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email string `gorm:"column:email;type:varchar(256);not null;uniqueIndex" json:"email"`
	// Source records where the signup came from (landing page, referral...).
	Source    string    `gorm:"column:source;type:varchar(64)" json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

func (WaitlistSignup) TableName() string { return "waitlist_signup" }
