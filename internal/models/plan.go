package models

// Service types accepted by the plans backend.
const (
	ServiceResidential = "Residential"
	ServiceCommercial  = "Commercial"
)

// Plan is one electricity offer as returned by the plans backend.
// Optional fields are nil when the backend sends null or omits the key.
type Plan struct {
	ID              int64    `json:"id"`
	ProviderID      int64    `json:"provider_id"`
	PlanName        string   `json:"plan_name"`
	PlanType        *string  `json:"plan_type,omitempty"`
	ServiceType     string   `json:"service_type,omitempty"`
	ZipCode         *string  `json:"zip_code,omitempty"`
	ContractMonths  *int     `json:"contract_months,omitempty"`
	Rate500Cents    *float64 `json:"rate_500_cents,omitempty"`
	Rate1000Cents   *float64 `json:"rate_1000_cents,omitempty"`
	Rate2000Cents   *float64 `json:"rate_2000_cents,omitempty"`
	MonthlyBill1000 *float64 `json:"monthly_bill_1000,omitempty"`
	SpecialFeatures *string  `json:"special_features,omitempty"`
	PlanURL         *string  `json:"plan_url,omitempty"`

	MonthlyBill2000     *float64 `json:"monthly_bill_2000,omitempty"`
	EarlyTerminationFee *float64 `json:"early_termination_fee,omitempty"`
	BaseMonthlyFee      *float64 `json:"base_monthly_fee,omitempty"`
	RenewablePercent    *int     `json:"renewable_percent,omitempty"`
	// LastUpdated is the backend timestamp, passed through unparsed since
	// it may lack a zone offset.
	LastUpdated *string `json:"last_updated,omitempty"`
}

// TypeLabel returns the plan type, or fallback when the backend sent none.
func (p Plan) TypeLabel(fallback string) string {
	if p.PlanType == nil || *p.PlanType == "" {
		return fallback
	}
	return *p.PlanType
}

// Float returns a pointer to v. Handy for building plans in code and tests.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
