package models

import "time"

// MfaChallenge is a single-use second-factor code. Only the bcrypt hash of
// the code is stored; the plaintext leaves the process via the delivery
// channel and is never persisted.
type MfaChallenge struct {
	ID         string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID     string     `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	CodeHash   string     `gorm:"column:code_hash;type:varchar(128);not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	ConsumedAt *time.Time `gorm:"column:consumed_at;default:null" json:"consumed_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (MfaChallenge) TableName() string { return "mfa_challenge" }

// Usable reports whether the challenge can still be redeemed at t.
func (m *MfaChallenge) Usable(t time.Time) bool {
	return m != nil && m.ConsumedAt == nil && m.ExpiresAt.After(t)
}
