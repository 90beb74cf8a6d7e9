package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive       SubscriptionStatus = "active"
	SubscriptionStatusExpired      SubscriptionStatus = "expired"
	SubscriptionStatusGracePeriod  SubscriptionStatus = "grace_period"
	SubscriptionStatusBillingRetry SubscriptionStatus = "billing_retry"
	SubscriptionStatusCancelled    SubscriptionStatus = "cancelled"
	SubscriptionStatusRevoked      SubscriptionStatus = "revoked"
	SubscriptionStatusPaused       SubscriptionStatus = "paused"
)

// Entitled reports whether the status still grants access to paid features.
// Cancelled stays entitled because the entitlement persists until the expiry
// date passes; the expiry check itself lives on the model.
func (s SubscriptionStatus) Entitled() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusGracePeriod, SubscriptionStatusCancelled:
		return true
	default:
		return false
	}
}

type SubscriptionTier string

const (
	SubscriptionTierWeekly  SubscriptionTier = "weekly"
	SubscriptionTierMonthly SubscriptionTier = "monthly"
	SubscriptionTierYearly  SubscriptionTier = "yearly"
	SubscriptionTierUnknown SubscriptionTier = "unknown"
)

// SubscriptionInfo is the API-facing view of a user's entitlement.
type SubscriptionInfo struct {
	Status    SubscriptionStatus `json:"status"`
	Tier      SubscriptionTier   `json:"tier"`
	ProductID string             `json:"product_id"`
	AutoRenew bool               `json:"auto_renew"`
	ExpireAt  *time.Time         `json:"expire_at"`
}
