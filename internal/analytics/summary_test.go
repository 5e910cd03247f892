package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-analyzer/internal/models"
)

func TestComputeSummary_NoData(t *testing.T) {
	assert.Nil(t, ComputeSummary(nil, DefaultUsageKwh, DefaultBaseFee))
	assert.Nil(t, ComputeSummary([]models.Plan{}, DefaultUsageKwh, DefaultBaseFee))

	noRates := []models.Plan{unratedPlan(1, 1), unratedPlan(2, 2)}
	noRates[1].Rate1000Cents = models.Float(0)
	assert.Nil(t, ComputeSummary(noRates, DefaultUsageKwh, DefaultBaseFee))
}

func TestComputeSummary_Figures(t *testing.T) {
	plans := []models.Plan{
		ratedPlan(1, 1, 13.4, "Fixed"),
		unratedPlan(2, 2),
		ratedPlan(3, 2, 10.9, "Fixed"),
		ratedPlan(4, 3, 16.2, "Variable"),
		ratedPlan(5, 3, 12.1, "Solar"),
	}

	s := ComputeSummary(plans, 1000, DefaultBaseFee)
	require.NotNil(t, s)

	assert.Equal(t, 10.9, s.LowestRate)
	assert.Equal(t, 16.2, s.HighestRate)
	assert.Equal(t, "13.15", s.AverageRate.StringFixed(2))
	assert.Equal(t, int64(3), s.BestPlan.ID)
	assert.Equal(t, int64(4), s.WorstPlan.ID)
	assert.Equal(t, 5, s.TotalPlans, "total counts unrated plans too")
	assert.Equal(t, 4, s.RatedPlans)
	assert.InDelta(t, (1000*16.2/100+DefaultBaseFee)-(1000*10.9/100+DefaultBaseFee), s.PotentialSavings, 1e-9)
	assert.InDelta(t, s.PotentialSavings*12, s.AnnualSavings(), 1e-9)
}

func TestComputeSummary_HugeRatesDoNotOverflowAverage(t *testing.T) {
	plans := []models.Plan{ratedPlan(1, 1, 1e308, ""), ratedPlan(2, 2, 1e308, "")}

	var s *Summary
	require.NotPanics(t, func() { s = ComputeSummary(plans, 1000, DefaultBaseFee) })
	require.NotNil(t, s)
	assert.True(t, decimal.NewFromFloat(1e308).Equal(s.AverageRate), "average %v", s.AverageRate)
	assert.Equal(t, 2, s.RatedPlans)
}

func TestComputeSummary_FirstOccurrenceWins(t *testing.T) {
	plans := []models.Plan{
		ratedPlan(1, 1, 14, ""),
		ratedPlan(2, 1, 9.5, ""),
		ratedPlan(3, 2, 17, ""),
		ratedPlan(4, 2, 9.5, ""),
		ratedPlan(5, 3, 17, ""),
	}

	s := ComputeSummary(plans, DefaultUsageKwh, DefaultBaseFee)
	require.NotNil(t, s)
	assert.Equal(t, int64(2), s.BestPlan.ID)
	assert.Equal(t, int64(3), s.WorstPlan.ID)
}

func TestComputeSummary_SinglePlan(t *testing.T) {
	s := ComputeSummary([]models.Plan{ratedPlan(7, 1, 11.25, "")}, DefaultUsageKwh, DefaultBaseFee)
	require.NotNil(t, s)
	assert.Equal(t, s.LowestRate, s.HighestRate)
	assert.Equal(t, s.BestPlan.ID, s.WorstPlan.ID)
	assert.Zero(t, s.PotentialSavings)
}

func TestComputeSummary_AverageBetweenBounds(t *testing.T) {
	sets := [][]float64{
		{10.1, 10.2},
		{8.7, 9.9, 12.3, 14.4, 21.05},
		{13.333, 13.337},
		{15},
		{9.99, 10.01, 10.0, 19.99},
	}

	for _, rates := range sets {
		plans := make([]models.Plan, 0, len(rates))
		for i, r := range rates {
			plans = append(plans, ratedPlan(int64(i+1), 1, r, ""))
		}
		s := ComputeSummary(plans, DefaultUsageKwh, DefaultBaseFee)
		require.NotNil(t, s)

		low := decimal.NewFromFloat(s.LowestRate).Round(2)
		high := decimal.NewFromFloat(s.HighestRate).Round(2)
		assert.True(t, low.LessThanOrEqual(s.AverageRate), "rates %v: lowest %v > average %v", rates, low, s.AverageRate)
		assert.True(t, s.AverageRate.LessThanOrEqual(high), "rates %v: average %v > highest %v", rates, s.AverageRate, high)
		assert.GreaterOrEqual(t, s.PotentialSavings, 0.0)
	}
}

func TestComputeSummary_Idempotent(t *testing.T) {
	plans := []models.Plan{ratedPlan(1, 1, 13.4, "Fixed"), ratedPlan(2, 2, 10.9, "")}

	first := ComputeSummary(plans, 1500, 5)
	second := ComputeSummary(plans, 1500, 5)
	assert.Equal(t, first, second)
}
