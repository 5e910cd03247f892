package dashboard

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"energy-analyzer/internal/analytics"
	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/models"

	"github.com/gofiber/fiber/v2"
)

// usageParams are the usage inputs of a request.
type usageParams struct {
	UsageKwh float64 `json:"usage_kwh"`
	BaseFee  float64 `json:"base_fee"`
}

func (s *Server) filterParams(c *fiber.Ctx) (models.PlanFilter, error) {
	f := models.PlanFilter{
		Provider:    c.Query("provider"),
		PlanType:    c.Query("plan_type"),
		ServiceType: c.Query("service_type"),
		ZipCode:     c.Query("zip_code"),
	}
	if raw := strings.TrimSpace(c.Query("contract_months")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return f, errx.BadRequest(err, "contract_months must be a whole number")
		}
		f.ContractMonths = n
	}

	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return f, errx.BadRequest(err, "invalid plan filter: "+err.Error())
	}
	return f, nil
}

func (s *Server) costParams(c *fiber.Ctx) (usageParams, error) {
	p := usageParams{UsageKwh: s.opts.UsageKwh, BaseFee: s.opts.BaseFee}

	if raw := strings.TrimSpace(c.Query("usage")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(v) || v <= 0 {
			return p, errx.BadRequest(fmt.Errorf("usage %q", raw), "usage must be a number greater than 0")
		}
		p.UsageKwh = v
	}
	if raw := strings.TrimSpace(c.Query("base_fee")); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || !finite(v) || v < 0 {
			return p, errx.BadRequest(fmt.Errorf("base_fee %q", raw), "base_fee must be a number of at least 0")
		}
		p.BaseFee = v
	}
	return p, nil
}

// finite rejects the NaN and Inf spellings strconv accepts.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// planIDs parses ids=1,2,3. Duplicates are dropped, order is kept.
func planIDs(c *fiber.Ctx) ([]int64, error) {
	raw := strings.TrimSpace(c.Query("ids"))
	if raw == "" {
		return nil, errx.BadRequest(errors.New("missing ids"), "ids is required, e.g. ids=1,2,3")
	}

	seen := make(map[int64]bool)
	ids := make([]int64, 0)
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, errx.BadRequest(fmt.Errorf("id %q", part), "ids must be positive integers")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) > analytics.MaxComparePlans {
		return nil, errx.BadRequest(fmt.Errorf("%d ids", len(ids)), fmt.Sprintf("at most %d plans can be compared", analytics.MaxComparePlans))
	}
	return ids, nil
}
