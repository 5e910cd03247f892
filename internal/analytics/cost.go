// Package analytics turns plan snapshots into the figures shown by the
// dashboards: monthly cost estimates, market summary, price distribution and
// per-provider rollups. Every function is pure and safe to call concurrently.
package analytics

import "math"

const (
	// DefaultBaseFee is the fixed monthly charge in dollars used when the
	// user does not override it.
	DefaultBaseFee = 9.95
	// DefaultUsageKwh is the average monthly consumption of a Texas home.
	DefaultUsageKwh = 1146.0
)

// HasRate reports whether a published rate is usable. Absent, zero and
// infinite rates are all treated as "no rate available".
func HasRate(rate *float64) bool {
	return rate != nil && *rate > 0 && !math.IsInf(*rate, 1)
}

// MonthlyCost estimates a monthly bill in dollars for a per-kWh rate in
// cents. It returns 0 when no estimate is possible.
func MonthlyCost(rateCents *float64, usageKwh, baseFee float64) float64 {
	if !HasRate(rateCents) {
		return 0
	}
	return usageKwh*(*rateCents)/100 + baseFee
}
