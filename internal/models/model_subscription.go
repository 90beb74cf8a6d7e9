package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/petrelhq/petrel/pkg/types"
)

// Subscription stores a user's billing entitlement as mirrored from the
// billing provider's webhooks. Rows are never hard-deleted; terminal states
// are expressed through Status.
type Subscription struct {
	ID        string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                   `gorm:"column:user_id;type:varchar(64);not null;index" json:"user_id"`
	ProductID string                   `gorm:"column:product_id;type:varchar(128);not null" json:"product_id"`
	Tier      types.SubscriptionTier   `gorm:"column:tier;type:varchar(32);not null" json:"tier"`
	Status    types.SubscriptionStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// PurchaseAt is the original purchase time of this subscription line.
	PurchaseAt time.Time `gorm:"column:purchase_at;not null" json:"purchase_at"`
	// ExpireAt is the entitlement end time; nil for non-expiring products.
	ExpireAt  *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`
	AutoRenew bool       `gorm:"column:auto_renew;not null;default:false" json:"auto_renew"`
	// OriginalTransactionID identifies the subscription line across renewals
	// and is the idempotency key for webhook handlers.
	OriginalTransactionID string `gorm:"column:original_transaction_id;type:varchar(128);not null;uniqueIndex" json:"original_transaction_id"`
	// LatestTransactionID is monotonically the most recent transaction seen.
	// Updates are CAS-guarded and must never regress it.
	LatestTransactionID string `gorm:"column:latest_transaction_id;type:varchar(128);not null" json:"latest_transaction_id"`
	// LatestEventAt is the provider timestamp of the newest applied event,
	// used to drop out-of-order deliveries.
	LatestEventAt time.Time      `gorm:"column:latest_event_at;not null" json:"latest_event_at"`
	Extra         datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Valid reports whether the subscription currently grants entitlement.
func (s *Subscription) Valid() bool {
	if s == nil || !s.Status.Entitled() {
		return false
	}
	return s.ExpireAt == nil || s.ExpireAt.After(time.Now())
}

func (s *Subscription) Info() *types.SubscriptionInfo {
	if s == nil {
		return nil
	}
	return &types.SubscriptionInfo{
		Status:    s.Status,
		Tier:      s.Tier,
		ProductID: s.ProductID,
		AutoRenew: s.AutoRenew,
		ExpireAt:  s.ExpireAt,
	}
}
