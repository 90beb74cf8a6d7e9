package subscription

import "strconv"

// CompareTransactionIDs orders two provider transaction ids. Ids are usually
// decimal strings of increasing value, so numeric comparison is preferred;
// for opaque ids fall back to length-then-lexicographic, which still orders
// zero-padded and monotonically grown identifiers correctly.
// Returns <0 when a is older than b, 0 when equal, >0 when newer.
func CompareTransactionIDs(a, b string) int {
	an, aerr := strconv.ParseUint(a, 10, 64)
	bn, berr := strconv.ParseUint(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
