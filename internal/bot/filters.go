package bot

import (
	"fmt"
	"strconv"
	"strings"

	"energy-analyzer/internal/models"
)

// parseFilters reads key=value pairs. A word without "=" continues the
// previous value, so provider=TXU Energy works without quoting.
func parseFilters(args []string) (models.PlanFilter, error) {
	var f models.PlanFilter
	var last *string

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if last == nil {
				return f, fmt.Errorf("expected key=value, got %q", arg)
			}
			*last += " " + arg
			continue
		}

		last = nil
		switch strings.ToLower(key) {
		case "provider":
			f.Provider = value
			last = &f.Provider
		case "type":
			f.PlanType = value
			last = &f.PlanType
		case "service":
			f.ServiceType = value
		case "zip":
			f.ZipCode = value
		case "months":
			n, err := strconv.Atoi(value)
			if err != nil {
				return f, fmt.Errorf("months must be a whole number, got %q", value)
			}
			f.ContractMonths = n
		default:
			return f, fmt.Errorf("unknown filter %q (use provider, type, service, zip, months)", key)
		}
	}

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func describeFilter(f models.PlanFilter) string {
	if f.IsEmpty() {
		return "all plans"
	}
	var parts []string
	if f.Provider != "" {
		parts = append(parts, "provider "+f.Provider)
	}
	if f.PlanType != "" {
		parts = append(parts, f.PlanType)
	}
	if f.ServiceType != "" {
		parts = append(parts, f.ServiceType)
	}
	if f.ZipCode != "" {
		parts = append(parts, "zip "+f.ZipCode)
	}
	if f.ContractMonths > 0 {
		parts = append(parts, strconv.Itoa(f.ContractMonths)+" months")
	}
	return strings.Join(parts, ", ")
}
