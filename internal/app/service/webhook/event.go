package webhook

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind is the billing provider's declared event type. The set is open:
// the provider adds kinds over time and unknown kinds are acknowledged, not
// failed (dispatcher default arm).
type EventKind string

const (
	EventKindInitialPurchase     EventKind = "INITIAL_PURCHASE"
	EventKindNonRenewingPurchase EventKind = "NON_RENEWING_PURCHASE"
	EventKindRenewal             EventKind = "RENEWAL"
	EventKindCancellation        EventKind = "CANCELLATION"
	EventKindUncancellation      EventKind = "UNCANCELLATION"
	EventKindExpiration          EventKind = "EXPIRATION"
	EventKindBillingIssue        EventKind = "BILLING_ISSUE"
	EventKindSubscriberAlias     EventKind = "SUBSCRIBER_ALIAS"
	EventKindSubscriptionPaused  EventKind = "SUBSCRIPTION_PAUSED"
	EventKindTransfer            EventKind = "TRANSFER"
)

// Payload is one webhook delivery: the declared kind plus the event body.
type Payload struct {
	Type  string `json:"type"`
	Event Event  `json:"event"`
}

func (p *Payload) Kind() EventKind { return EventKind(p.Type) }

// Event carries the provider-specific fields. Kind-specific fields are zero
// for kinds that do not use them.
type Event struct {
	ID                        string   `json:"id"`
	AppUserID                 string   `json:"app_user_id"`
	OriginalAppUserID         string   `json:"original_app_user_id"`
	ProductID                 string   `json:"product_id"`
	PeriodType                string   `json:"period_type"`
	TransactionID             string   `json:"transaction_id"`
	OriginalTransactionID     string   `json:"original_transaction_id"`
	PurchasedAtMs             int64    `json:"purchased_at_ms"`
	ExpirationAtMs            int64    `json:"expiration_at_ms"`
	EventTimestampMs          int64    `json:"event_timestamp_ms"`
	GracePeriodExpirationAtMs int64    `json:"grace_period_expiration_at_ms"`
	AutoResumeAtMs            int64    `json:"auto_resume_at_ms"`
	NewAppUserID              string   `json:"new_app_user_id"`
	TransferredFrom           []string `json:"transferred_from"`
	TransferredTo             []string `json:"transferred_to"`
	CancelReason              string   `json:"cancel_reason"`
	Environment               string   `json:"environment"`
	Store                     string   `json:"store"`
}

// ParsePayload decodes a delivery body. Callers must have verified the raw
// bytes first; parsing never precedes verification.
func ParsePayload(body []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if p.Type == "" {
		return nil, fmt.Errorf("webhook payload has no type")
	}
	return &p, nil
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// PurchasedAt returns the purchase time, falling back to the event timestamp
// when the provider omitted it.
func (e *Event) PurchasedAt() time.Time {
	if e.PurchasedAtMs > 0 {
		return msToTime(e.PurchasedAtMs)
	}
	return e.EventTime()
}

// ExpirationAt returns the entitlement end, nil for non-expiring products.
func (e *Event) ExpirationAt() *time.Time {
	if e.ExpirationAtMs <= 0 {
		return nil
	}
	t := msToTime(e.ExpirationAtMs)
	return &t
}

func (e *Event) GracePeriodExpirationAt() *time.Time {
	if e.GracePeriodExpirationAtMs <= 0 {
		return nil
	}
	t := msToTime(e.GracePeriodExpirationAtMs)
	return &t
}

// EventTime is the provider timestamp of the event, used for ordering.
func (e *Event) EventTime() time.Time {
	if e.EventTimestampMs > 0 {
		return msToTime(e.EventTimestampMs)
	}
	if e.PurchasedAtMs > 0 {
		return msToTime(e.PurchasedAtMs)
	}
	return time.Now().UTC()
}
