package subscription

import (
	"strings"

	"github.com/petrelhq/petrel/pkg/types"
)

// TierFromProduct derives the subscription tier from the provider product id
// and period type. Product ids follow the "<app>_<tier>_..." convention; the
// period type is consulted when the id is not telling.
func TierFromProduct(productID, periodType string) types.SubscriptionTier {
	p := strings.ToLower(productID)
	switch {
	case strings.Contains(p, "annual"), strings.Contains(p, "year"):
		return types.SubscriptionTierYearly
	case strings.Contains(p, "month"):
		return types.SubscriptionTierMonthly
	case strings.Contains(p, "week"):
		return types.SubscriptionTierWeekly
	}
	switch strings.ToUpper(periodType) {
	case "ANNUAL", "YEARLY":
		return types.SubscriptionTierYearly
	case "MONTHLY":
		return types.SubscriptionTierMonthly
	case "WEEKLY":
		return types.SubscriptionTierWeekly
	}
	return types.SubscriptionTierUnknown
}
