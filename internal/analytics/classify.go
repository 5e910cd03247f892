package analytics

// RateClass tags a rate for presentation.
type RateClass string

const (
	RateGood    RateClass = "good"
	RateWarning RateClass = "warning"
	RateHigh    RateClass = "high"
	RateUnrated RateClass = "unrated"
)

// Thresholds in cents per kWh.
const (
	goodBelow    = 12.0
	warningBelow = 15.0
)

// ClassifyRate buckets a 1000 kWh rate into good (<12), warning (<15) and
// high. Absent or non-positive rates are unrated.
func ClassifyRate(rate *float64) RateClass {
	if !HasRate(rate) {
		return RateUnrated
	}
	switch r := *rate; {
	case r < goodBelow:
		return RateGood
	case r < warningBelow:
		return RateWarning
	default:
		return RateHigh
	}
}
