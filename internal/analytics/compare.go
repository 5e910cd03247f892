package analytics

import "energy-analyzer/internal/models"

// Usage tiers at which the backend publishes rates.
const (
	Tier500  = 500.0
	Tier1000 = 1000.0
	Tier2000 = 2000.0
)

// MaxComparePlans is how many plans can be compared side by side.
const MaxComparePlans = 5

// CostComparison is one row of the side-by-side plan comparison.
type CostComparison struct {
	Plan  models.Plan `json:"plan"`
	Class RateClass   `json:"class"`
	// MonthlyCost is the estimate at the caller's usage with the 1000 kWh rate.
	MonthlyCost float64 `json:"monthly_cost"`
	// Tier costs use the rate published for that tier, 0 when unpublished.
	Cost500  float64 `json:"cost_500"`
	Cost1000 float64 `json:"cost_1000"`
	Cost2000 float64 `json:"cost_2000"`
	// DeltaFromCheapest is how much more this plan costs per month than the
	// cheapest rated plan of the comparison. Unrated plans report 0.
	DeltaFromCheapest float64 `json:"delta_from_cheapest"`
}

// CompareCosts prices every plan at the caller's usage and at the three
// published tiers. Output order follows input order.
func CompareCosts(plans []models.Plan, usageKwh, baseFee float64) []CostComparison {
	rows := make([]CostComparison, 0, len(plans))
	cheapest := 0.0
	for _, p := range plans {
		row := CostComparison{
			Plan:        p,
			Class:       ClassifyRate(p.Rate1000Cents),
			MonthlyCost: MonthlyCost(p.Rate1000Cents, usageKwh, baseFee),
			Cost500:     MonthlyCost(p.Rate500Cents, Tier500, baseFee),
			Cost1000:    MonthlyCost(p.Rate1000Cents, Tier1000, baseFee),
			Cost2000:    MonthlyCost(p.Rate2000Cents, Tier2000, baseFee),
		}
		if row.MonthlyCost > 0 && (cheapest == 0 || row.MonthlyCost < cheapest) {
			cheapest = row.MonthlyCost
		}
		rows = append(rows, row)
	}

	for i := range rows {
		if rows[i].MonthlyCost > 0 {
			rows[i].DeltaFromCheapest = rows[i].MonthlyCost - cheapest
		}
	}
	return rows
}
