package analytics

import (
	"fmt"
	"strconv"

	"energy-analyzer/internal/models"
)

// Recommendation writes the plain-language advice shown under the market
// overview. It returns an empty string when there is no summary.
func Recommendation(s *Summary, providers []models.Provider, usageKwh, baseFee float64) string {
	if s == nil {
		return ""
	}

	providerName, ok := models.ProviderNames(providers)[s.BestPlan.ProviderID]
	if !ok {
		providerName = "Unknown"
	}
	avg := s.AverageRate.StringFixed(2)

	return fmt.Sprintf(
		"Based on %d plans analyzed, the best rate is %.1f¢/kWh from %s (%s).\n\n"+
			"The market average is %s¢/kWh. If you're currently paying above %s¢/kWh, "+
			"you could save up to $%.0f/year by switching to the best available plan.\n\n"+
			"With your usage of %s kWh/month, your estimated bill with the best plan would be $%.2f/month.",
		s.TotalPlans, s.LowestRate, providerName, s.BestPlan.PlanName,
		avg, avg,
		s.AnnualSavings(),
		strconv.FormatFloat(usageKwh, 'f', -1, 64), MonthlyCost(&s.LowestRate, usageKwh, baseFee),
	)
}
