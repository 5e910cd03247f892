package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-analyzer/internal/models"
)

func TestCompareCosts(t *testing.T) {
	cheap := ratedPlan(1, 1, 10, "Fixed")
	cheap.Rate500Cents = models.Float(12)
	cheap.Rate2000Cents = models.Float(9)
	pricey := ratedPlan(2, 2, 15, "Variable")
	none := unratedPlan(3, 3)

	rows := CompareCosts([]models.Plan{pricey, none, cheap}, 1000, DefaultBaseFee)
	require.Len(t, rows, 3)

	assert.Equal(t, int64(2), rows[0].Plan.ID)
	assert.Equal(t, RateHigh, rows[0].Class)
	assert.InDelta(t, 159.95, rows[0].MonthlyCost, 1e-9)
	assert.InDelta(t, 50.0, rows[0].DeltaFromCheapest, 1e-9)
	assert.Zero(t, rows[0].Cost500, "tier rate not published")

	assert.Equal(t, RateUnrated, rows[1].Class)
	assert.Zero(t, rows[1].MonthlyCost)
	assert.Zero(t, rows[1].DeltaFromCheapest)

	assert.Equal(t, RateGood, rows[2].Class)
	assert.Zero(t, rows[2].DeltaFromCheapest)
	assert.InDelta(t, 500*12.0/100+DefaultBaseFee, rows[2].Cost500, 1e-9)
	assert.InDelta(t, 1000*10.0/100+DefaultBaseFee, rows[2].Cost1000, 1e-9)
	assert.InDelta(t, 2000*9.0/100+DefaultBaseFee, rows[2].Cost2000, 1e-9)
}

func TestCompareCosts_Empty(t *testing.T) {
	assert.Empty(t, CompareCosts(nil, DefaultUsageKwh, DefaultBaseFee))
}
