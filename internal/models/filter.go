package models

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PlanFilter holds the optional filters of GET /plans/. Zero values mean
// "no filter on this dimension".
type PlanFilter struct {
	Provider       string `json:"provider,omitempty"`
	PlanType       string `json:"plan_type,omitempty"`
	ServiceType    string `json:"service_type,omitempty" validate:"omitempty,oneof=Residential Commercial"`
	ZipCode        string `json:"zip_code,omitempty" validate:"omitempty,numeric,len=5"`
	ContractMonths int    `json:"contract_months,omitempty" validate:"gte=0,lte=60"`
}

// Validate checks the filter before it is sent upstream.
func (f PlanFilter) Validate() error {
	return validate.Struct(f)
}

// Normalize trims whitespace and canonicalises the service type casing.
func (f PlanFilter) Normalize() PlanFilter {
	f.Provider = strings.TrimSpace(f.Provider)
	f.PlanType = strings.TrimSpace(f.PlanType)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	switch strings.ToLower(strings.TrimSpace(f.ServiceType)) {
	case "residential":
		f.ServiceType = ServiceResidential
	case "commercial":
		f.ServiceType = ServiceCommercial
	default:
		f.ServiceType = strings.TrimSpace(f.ServiceType)
	}
	return f
}

// IsEmpty reports whether no filter dimension is set.
func (f PlanFilter) IsEmpty() bool {
	return f == PlanFilter{}
}

// Query encodes the filter as backend query parameters, skipping unset ones.
func (f PlanFilter) Query() url.Values {
	q := url.Values{}
	if f.Provider != "" {
		q.Set("provider", f.Provider)
	}
	if f.PlanType != "" {
		q.Set("plan_type", f.PlanType)
	}
	if f.ServiceType != "" {
		q.Set("service_type", f.ServiceType)
	}
	if f.ZipCode != "" {
		q.Set("zip_code", f.ZipCode)
	}
	if f.ContractMonths > 0 {
		q.Set("contract_months", strconv.Itoa(f.ContractMonths))
	}
	return q
}
