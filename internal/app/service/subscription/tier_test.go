package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/petrelhq/petrel/pkg/types"
)

func TestTierFromProduct(t *testing.T) {
	tests := []struct {
		name       string
		productID  string
		periodType string
		want       types.SubscriptionTier
	}{
		{name: "weekly in product id", productID: "petrel_weekly_599", want: types.SubscriptionTierWeekly},
		{name: "monthly in product id", productID: "petrel_monthly_1499", want: types.SubscriptionTierMonthly},
		{name: "yearly in product id", productID: "petrel_yearly_9999", want: types.SubscriptionTierYearly},
		{name: "annual in product id", productID: "petrel_annual", want: types.SubscriptionTierYearly},
		{name: "case insensitive", productID: "PETREL_MONTHLY", want: types.SubscriptionTierMonthly},
		{name: "period type fallback", productID: "petrel_premium", periodType: "WEEKLY", want: types.SubscriptionTierWeekly},
		{name: "product id beats period type", productID: "petrel_yearly", periodType: "MONTHLY", want: types.SubscriptionTierYearly},
		{name: "unknown", productID: "petrel_premium", periodType: "NORMAL", want: types.SubscriptionTierUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierFromProduct(tt.productID, tt.periodType))
		})
	}
}
