package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/petrelhq/petrel/pkg/types"
)

func TestSubscription_Valid(t *testing.T) {
	future := time.Now().Add(24 * time.Hour)
	past := time.Now().Add(-24 * time.Hour)

	tests := []struct {
		name string
		sub  *Subscription
		want bool
	}{
		{name: "nil", sub: nil, want: false},
		{name: "active not expired", sub: &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: &future}, want: true},
		{name: "active expired", sub: &Subscription{Status: types.SubscriptionStatusActive, ExpireAt: &past}, want: false},
		{name: "active no expiry", sub: &Subscription{Status: types.SubscriptionStatusActive}, want: true},
		{name: "cancelled keeps entitlement until expiry", sub: &Subscription{Status: types.SubscriptionStatusCancelled, ExpireAt: &future}, want: true},
		{name: "cancelled after expiry", sub: &Subscription{Status: types.SubscriptionStatusCancelled, ExpireAt: &past}, want: false},
		{name: "grace period", sub: &Subscription{Status: types.SubscriptionStatusGracePeriod, ExpireAt: &future}, want: true},
		{name: "expired", sub: &Subscription{Status: types.SubscriptionStatusExpired, ExpireAt: &past}, want: false},
		{name: "paused", sub: &Subscription{Status: types.SubscriptionStatusPaused, ExpireAt: &future}, want: false},
		{name: "revoked", sub: &Subscription{Status: types.SubscriptionStatusRevoked, ExpireAt: &future}, want: false},
		{name: "billing retry", sub: &Subscription{Status: types.SubscriptionStatusBillingRetry, ExpireAt: &future}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.Valid())
		})
	}
}
