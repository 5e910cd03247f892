package analytics

import (
	"github.com/shopspring/decimal"

	"energy-analyzer/internal/models"
)

// Summary is the market overview for one filtered plan set.
type Summary struct {
	LowestRate       float64         `json:"lowest_rate"`
	HighestRate      float64         `json:"highest_rate"`
	AverageRate      decimal.Decimal `json:"average_rate"`
	BestPlan         models.Plan     `json:"best_plan"`
	WorstPlan        models.Plan     `json:"worst_plan"`
	TotalPlans       int             `json:"total_plans"`
	RatedPlans       int             `json:"rated_plans"`
	PotentialSavings float64         `json:"potential_savings"`
}

// AnnualSavings projects the monthly savings over a year.
func (s *Summary) AnnualSavings() float64 {
	if s == nil {
		return 0
	}
	return s.PotentialSavings * 12
}

// RatedPlans returns the plans that publish a usable 1000 kWh rate, in
// input order.
func RatedPlans(plans []models.Plan) []models.Plan {
	rated := make([]models.Plan, 0, len(plans))
	for _, p := range plans {
		if HasRate(p.Rate1000Cents) {
			rated = append(rated, p)
		}
	}
	return rated
}

// ComputeSummary derives the market overview. It returns nil when no plan
// publishes a 1000 kWh rate, which callers treat as insufficient data.
//
// TotalPlans counts every input plan while the rate figures only consider
// rated ones. Best and worst plans are the first input plans carrying the
// lowest and highest rate.
func ComputeSummary(plans []models.Plan, usageKwh, baseFee float64) *Summary {
	rated := RatedPlans(plans)
	if len(rated) == 0 {
		return nil
	}

	s := &Summary{
		TotalPlans: len(plans),
		RatedPlans: len(rated),
		BestPlan:   rated[0],
		WorstPlan:  rated[0],
	}
	s.LowestRate = *rated[0].Rate1000Cents
	s.HighestRate = *rated[0].Rate1000Cents

	total := decimal.Zero
	for _, p := range rated {
		rate := *p.Rate1000Cents
		total = total.Add(decimal.NewFromFloat(rate))
		if rate < s.LowestRate {
			s.LowestRate = rate
			s.BestPlan = p
		}
		if rate > s.HighestRate {
			s.HighestRate = rate
			s.WorstPlan = p
		}
	}

	s.AverageRate = total.Div(decimal.NewFromInt(int64(len(rated)))).Round(2)
	s.PotentialSavings = MonthlyCost(&s.HighestRate, usageKwh, baseFee) - MonthlyCost(&s.LowestRate, usageKwh, baseFee)
	return s
}
