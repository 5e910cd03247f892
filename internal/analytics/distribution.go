package analytics

import (
	"math"
	"sort"

	"energy-analyzer/internal/models"
)

const (
	// UnknownPlanType labels plans that carry no plan type.
	UnknownPlanType = "Unknown"
	// MaxProviderRollup caps the provider comparison to the cheapest ones.
	MaxProviderRollup = 10
)

// priceBands are the upper bounds (exclusive) of the histogram buckets in
// cents per kWh. The last band is unbounded.
var priceBands = []struct {
	label string
	upper float64
}{
	{label: "< 10¢", upper: 10},
	{label: "10-12¢", upper: 12},
	{label: "12-14¢", upper: 14},
	{label: "14-16¢", upper: 16},
	{label: "> 16¢", upper: math.Inf(1)},
}

// Bucket is one histogram bar. Max is nil for the open-ended last bucket.
type Bucket struct {
	Label string   `json:"label"`
	Min   float64  `json:"min"`
	Max   *float64 `json:"max,omitempty"`
	Count int      `json:"count"`
}

// ProviderRate is the rate rollup of a single provider.
type ProviderRate struct {
	Name        string  `json:"name"`
	AverageRate float64 `json:"average_rate"`
	MinRate     float64 `json:"min_rate"`
	Count       int     `json:"count"`
}

// TypeCount is the number of plans of one plan type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Distribution groups a plan set for the charts.
type Distribution struct {
	PriceBuckets []Bucket       `json:"price_buckets"`
	Providers    []ProviderRate `json:"providers"`
	PlanTypes    []TypeCount    `json:"plan_types"`
}

// RatedCount is the number of plans that landed in the histogram.
func (d Distribution) RatedCount() int {
	n := 0
	for _, b := range d.PriceBuckets {
		n += b.Count
	}
	return n
}

// PlanTypeCounts returns the plan type counts as a map.
func (d Distribution) PlanTypeCounts() map[string]int {
	counts := make(map[string]int, len(d.PlanTypes))
	for _, tc := range d.PlanTypes {
		counts[tc.Type] = tc.Count
	}
	return counts
}

// ComputeDistribution builds the price histogram, the provider rollup and
// the plan type counts. It never fails; empty input yields zeroed buckets.
func ComputeDistribution(plans []models.Plan, providers []models.Provider) Distribution {
	rated := RatedPlans(plans)
	return Distribution{
		PriceBuckets: priceHistogram(rated),
		Providers:    providerRollup(rated, providers),
		PlanTypes:    planTypeCounts(plans),
	}
}

func priceHistogram(rated []models.Plan) []Bucket {
	buckets := make([]Bucket, len(priceBands))
	lower := 0.0
	for i, band := range priceBands {
		buckets[i] = Bucket{Label: band.label, Min: lower}
		if !math.IsInf(band.upper, 1) {
			upper := band.upper
			buckets[i].Max = &upper
		}
		lower = band.upper
	}

	for _, p := range rated {
		buckets[bandIndex(*p.Rate1000Cents)].Count++
	}
	return buckets
}

// bandIndex finds the bucket of rate. Boundaries belong to the higher bucket.
func bandIndex(rate float64) int {
	for i, band := range priceBands {
		if rate < band.upper {
			return i
		}
	}
	return len(priceBands) - 1
}

// providerRollup groups rated plans by provider name. Plans whose provider
// id is unknown are left out. Groups keep first-seen order so the stable
// sort breaks average ties by that order.
func providerRollup(rated []models.Plan, providers []models.Provider) []ProviderRate {
	names := models.ProviderNames(providers)

	index := make(map[string]int)
	sums := make([]float64, 0)
	rollup := make([]ProviderRate, 0)
	for _, p := range rated {
		name, ok := names[p.ProviderID]
		if !ok {
			continue
		}
		rate := *p.Rate1000Cents
		i, seen := index[name]
		if !seen {
			i = len(rollup)
			index[name] = i
			rollup = append(rollup, ProviderRate{Name: name, MinRate: rate})
			sums = append(sums, 0)
		}
		sums[i] += rate
		rollup[i].Count++
		if rate < rollup[i].MinRate {
			rollup[i].MinRate = rate
		}
	}

	for i := range rollup {
		rollup[i].AverageRate = sums[i] / float64(rollup[i].Count)
	}

	sort.SliceStable(rollup, func(i, j int) bool {
		return rollup[i].AverageRate < rollup[j].AverageRate
	})
	if len(rollup) > MaxProviderRollup {
		rollup = rollup[:MaxProviderRollup]
	}
	return rollup
}

func planTypeCounts(plans []models.Plan) []TypeCount {
	index := make(map[string]int)
	counts := make([]TypeCount, 0)
	for _, p := range plans {
		label := p.TypeLabel(UnknownPlanType)
		i, seen := index[label]
		if !seen {
			i = len(counts)
			index[label] = i
			counts = append(counts, TypeCount{Type: label})
		}
		counts[i].Count++
	}
	return counts
}
