package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"

	"energy-analyzer/internal/analytics"
	"energy-analyzer/internal/backend"
	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/models"

	"github.com/gofiber/fiber/v2"
)

// PlanRow is a plan annotated with its rate class and monthly cost.
type PlanRow struct {
	models.Plan
	Class       analytics.RateClass `json:"class"`
	MonthlyCost float64             `json:"monthly_cost"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) handleProviders(c *fiber.Ctx) error {
	providers, err := s.source.Providers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"providers": providers,
		"count":     len(providers),
	})
}

func (s *Server) handlePlans(c *fiber.Ctx) error {
	filter, err := s.filterParams(c)
	if err != nil {
		return err
	}
	cost, err := s.costParams(c)
	if err != nil {
		return err
	}

	plans, err := s.source.Plans(c.UserContext(), filter)
	if err != nil {
		return err
	}

	rows := make([]PlanRow, 0, len(plans))
	for _, p := range plans {
		rows = append(rows, PlanRow{
			Plan:        p,
			Class:       analytics.ClassifyRate(p.Rate1000Cents),
			MonthlyCost: analytics.MonthlyCost(p.Rate1000Cents, cost.UsageKwh, cost.BaseFee),
		})
	}

	return c.JSON(fiber.Map{
		"plans":       rows,
		"count":       len(rows),
		"rated_count": len(analytics.RatedPlans(plans)),
		"usage_kwh":   cost.UsageKwh,
		"base_fee":    cost.BaseFee,
	})
}

// load fetches the filtered plans and every provider.
func (s *Server) load(c *fiber.Ctx) ([]models.Plan, []models.Provider, error) {
	filter, err := s.filterParams(c)
	if err != nil {
		return nil, nil, err
	}
	plans, err := s.source.Plans(c.UserContext(), filter)
	if err != nil {
		return nil, nil, err
	}
	providers, err := s.source.Providers(c.UserContext())
	if err != nil {
		return nil, nil, err
	}
	return plans, providers, nil
}

func (s *Server) handleSummary(c *fiber.Ctx) error {
	cost, err := s.costParams(c)
	if err != nil {
		return err
	}
	plans, providers, err := s.load(c)
	if err != nil {
		return err
	}

	summary := analytics.ComputeSummary(plans, cost.UsageKwh, cost.BaseFee)
	resp := fiber.Map{
		"summary":        summary,
		"recommendation": nil,
		"usage_kwh":      cost.UsageKwh,
		"base_fee":       cost.BaseFee,
	}
	if summary != nil {
		resp["annual_savings"] = summary.AnnualSavings()
		resp["recommendation"] = analytics.Recommendation(summary, providers, cost.UsageKwh, cost.BaseFee)
	}
	return c.JSON(resp)
}

func (s *Server) handleDistribution(c *fiber.Ctx) error {
	plans, providers, err := s.load(c)
	if err != nil {
		return err
	}

	dist := analytics.ComputeDistribution(plans, providers)
	return c.JSON(fiber.Map{
		"distribution": dist,
		"rated_count":  dist.RatedCount(),
		"charts":       distributionCharts(dist),
	})
}

func (s *Server) handleCompare(c *fiber.Ctx) error {
	ids, err := planIDs(c)
	if err != nil {
		return err
	}
	cost, err := s.costParams(c)
	if err != nil {
		return err
	}

	plans := make([]models.Plan, 0, len(ids))
	for _, id := range ids {
		plan, err := s.source.Plan(c.UserContext(), id)
		if err != nil {
			if errx.StatusOf(err) == http.StatusNotFound {
				return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("plan %d not found", id))
			}
			return err
		}
		plans = append(plans, *plan)
	}

	rows := analytics.CompareCosts(plans, cost.UsageKwh, cost.BaseFee)
	return c.JSON(fiber.Map{
		"rows":      rows,
		"chart":     compareChart(rows),
		"usage_kwh": cost.UsageKwh,
		"base_fee":  cost.BaseFee,
	})
}

func (s *Server) handleScrape(c *fiber.Ctx) error {
	req := backend.ScrapeRequest{
		ServiceType: c.Query("service_type"),
		ZipCode:     c.Query("zip_code"),
	}

	result, err := s.source.TriggerScrape(c.UserContext(), req)
	if err != nil {
		return err
	}

	raw := result.Raw
	if !json.Valid(raw) {
		raw = nil
	}
	return c.JSON(fiber.Map{
		"plans_processed": result.PlansProcessed,
		"source":          result.Source,
		"timestamp":       result.Timestamp,
		"response":        raw,
	})
}
