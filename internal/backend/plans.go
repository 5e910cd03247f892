package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/models"
)

// Providers lists every provider known to the backend.
func (c *Client) Providers(ctx context.Context) ([]models.Provider, error) {
	var providers []models.Provider
	if err := c.getJSON(ctx, "/plans/providers", url.Values{}, &providers); err != nil {
		return nil, err
	}
	if providers == nil {
		providers = []models.Provider{}
	}
	return providers, nil
}

// Plans lists the plans matching filter. The filter is normalised and
// validated before the request is sent.
func (c *Client) Plans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error) {
	filter = filter.Normalize()
	if err := filter.Validate(); err != nil {
		return nil, errx.BadRequest(err, "invalid plan filter")
	}

	var plans []models.Plan
	if err := c.getJSON(ctx, "/plans/", filter.Query(), &plans); err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []models.Plan{}
	}
	return plans, nil
}

// Plan fetches a single plan by id.
func (c *Client) Plan(ctx context.Context, id int64) (*models.Plan, error) {
	if id <= 0 {
		return nil, errx.BadRequest(fmt.Errorf("plan id %d", id), "invalid plan id")
	}

	var plan models.Plan
	if err := c.getJSON(ctx, "/plans/"+strconv.FormatInt(id, 10), url.Values{}, &plan); err != nil {
		return nil, err
	}
	if plan.ID == 0 {
		return nil, errx.New(fmt.Errorf("plan %d: empty payload", id), http.StatusNotFound, "not found")
	}
	return &plan, nil
}
