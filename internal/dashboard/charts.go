package dashboard

import (
	"math"
	"strconv"

	"energy-analyzer/internal/analytics"
)

// Chart types understood by the dashboard frontend.
const (
	ChartBar  = "bar"
	ChartPie  = "pie"
	ChartLine = "line"
)

var palette = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartConfig is a renderer-agnostic chart description.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries is one named data series.
type ChartSeries struct {
	Name string       `json:"name"`
	Data []ChartPoint `json:"data"`
}

// ChartPoint is a single labelled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// DistributionCharts are the three charts of the distribution view.
type DistributionCharts struct {
	PriceHistogram ChartConfig `json:"price_histogram"`
	Providers      ChartConfig `json:"providers"`
	PlanTypes      ChartConfig `json:"plan_types"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func colors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

func distributionCharts(d analytics.Distribution) DistributionCharts {
	return DistributionCharts{
		PriceHistogram: histogramChart(d.PriceBuckets),
		Providers:      providerChart(d.Providers),
		PlanTypes:      planTypeChart(d.PlanTypes),
	}
}

func histogramChart(buckets []analytics.Bucket) ChartConfig {
	points := make([]ChartPoint, 0, len(buckets))
	for _, b := range buckets {
		points = append(points, ChartPoint{Label: b.Label, Value: float64(b.Count)})
	}
	return ChartConfig{
		ChartType: ChartBar,
		Title:     "Rate distribution",
		XAxis:     "Rate (¢/kWh)",
		YAxis:     "Plans",
		Series:    []ChartSeries{{Name: "Plans", Data: points}},
		Colors:    colors(1),
		ShowGrid:  true,
	}
}

func providerChart(providers []analytics.ProviderRate) ChartConfig {
	avg := make([]ChartPoint, 0, len(providers))
	best := make([]ChartPoint, 0, len(providers))
	for _, p := range providers {
		avg = append(avg, ChartPoint{Label: p.Name, Value: round2(p.AverageRate)})
		best = append(best, ChartPoint{Label: p.Name, Value: round2(p.MinRate)})
	}
	return ChartConfig{
		ChartType: ChartBar,
		Title:     "Provider comparison",
		XAxis:     "Provider",
		YAxis:     "Rate (¢/kWh)",
		Series: []ChartSeries{
			{Name: "Average rate", Data: avg},
			{Name: "Best rate", Data: best},
		},
		Colors:     colors(2),
		ShowLegend: true,
		ShowGrid:   true,
	}
}

func planTypeChart(types []analytics.TypeCount) ChartConfig {
	points := make([]ChartPoint, 0, len(types))
	for _, tc := range types {
		points = append(points, ChartPoint{Label: tc.Type, Value: float64(tc.Count)})
	}
	return ChartConfig{
		ChartType:  ChartPie,
		Title:      "Plan types",
		Series:     []ChartSeries{{Name: "Plans", Data: points}},
		Colors:     colors(len(points)),
		ShowLegend: true,
	}
}

// compareChart plots every plan's monthly cost at the published tiers.
// Tiers without a published rate are left out of that plan's line.
func compareChart(rows []analytics.CostComparison) ChartConfig {
	series := make([]ChartSeries, 0, len(rows))
	for _, row := range rows {
		points := make([]ChartPoint, 0, 3)
		for _, tier := range []struct {
			kwh  float64
			cost float64
		}{
			{analytics.Tier500, row.Cost500},
			{analytics.Tier1000, row.Cost1000},
			{analytics.Tier2000, row.Cost2000},
		} {
			if tier.cost <= 0 {
				continue
			}
			points = append(points, ChartPoint{
				Label: strconv.FormatFloat(tier.kwh, 'f', -1, 64) + " kWh",
				Value: round2(tier.cost),
			})
		}
		series = append(series, ChartSeries{Name: row.Plan.PlanName, Data: points})
	}
	return ChartConfig{
		ChartType:  ChartLine,
		Title:      "Monthly cost by usage",
		XAxis:      "Usage (kWh)",
		YAxis:      "Monthly cost ($)",
		Series:     series,
		Colors:     colors(len(series)),
		ShowLegend: true,
		ShowGrid:   true,
	}
}
