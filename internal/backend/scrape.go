package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"
)

// SourcePowerToChoose is the live PowerToChoose.org scraper of the backend.
const SourcePowerToChoose = "powertochoose"

// ScrapeRequest selects what the backend should refresh.
type ScrapeRequest struct {
	ServiceType string `validate:"required,oneof=Residential Commercial"`
	ZipCode     string `validate:"omitempty,numeric,len=5"`
}

// ScrapeResult is the backend answer. Only Raw is guaranteed; the other
// fields are filled when the body has the usual shape.
type ScrapeResult struct {
	PlansProcessed int             `json:"plans_processed"`
	Source         string          `json:"source"`
	Timestamp      *string         `json:"timestamp"`
	Raw            json.RawMessage `json:"-"`
}

// TriggerScrape asks the backend to refresh its plan data and drops the
// response cache afterwards.
func (c *Client) TriggerScrape(ctx context.Context, req ScrapeRequest) (*ScrapeResult, error) {
	filter := models.PlanFilter{ServiceType: req.ServiceType, ZipCode: req.ZipCode}.Normalize()
	req.ServiceType, req.ZipCode = filter.ServiceType, filter.ZipCode
	if req.ServiceType == "" {
		req.ServiceType = models.ServiceResidential
	}
	if err := validate.Struct(req); err != nil {
		return nil, errx.BadRequest(err, "invalid scrape request")
	}

	query := url.Values{}
	query.Set("source", SourcePowerToChoose)
	query.Set("service_type", req.ServiceType)
	if req.ZipCode != "" {
		query.Set("zip_code", req.ZipCode)
	}

	body, err := c.do(ctx, http.MethodPost, "/plans/scrape", query)
	if err != nil {
		return nil, err
	}

	result := &ScrapeResult{Raw: json.RawMessage(body)}
	if err := json.Unmarshal(body, result); err != nil {
		logx.Debug().Err(err).Msg("scrape response is not the usual object, keeping raw body")
	}

	if c.cache != nil {
		if err := c.cache.Flush(ctx); err != nil {
			logx.Warn().Err(err).Msg("failed to flush cache after scrape")
		}
	}

	logx.Info().Int("plans_processed", result.PlansProcessed).Str("service_type", req.ServiceType).Msg("backend scrape finished")
	return result, nil
}
