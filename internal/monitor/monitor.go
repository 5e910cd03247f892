// Package monitor keeps the backend response cache warm.
package monitor

import (
	"context"
	"time"

	"energy-analyzer/internal/analytics"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"
)

// Source is the part of the backend client the refresher needs.
type Source interface {
	Providers(ctx context.Context) ([]models.Provider, error)
	Plans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
}

// Refresher periodically fetches the unfiltered provider and plan lists so
// that the first dashboard or bot request after expiry hits a warm cache.
type Refresher struct {
	source   Source
	interval time.Duration
}

// New creates a refresher. A non-positive interval disables it.
func New(source Source, interval time.Duration) *Refresher {
	return &Refresher{
		source:   source,
		interval: interval,
	}
}

// Enabled reports whether Run does any work.
func (r *Refresher) Enabled() bool {
	return r.interval > 0
}

// Run refreshes immediately and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	if !r.Enabled() {
		logx.Info().Msg("cache refresher disabled")
		return
	}
	logx.Info().Dur("interval", r.interval).Msg("cache refresher started")

	r.Refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Info().Msg("cache refresher stopped")
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

// Refresh performs one warm-up pass. Failures are logged, not returned;
// the next tick tries again.
func (r *Refresher) Refresh(ctx context.Context) {
	providers, err := r.source.Providers(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("refresh providers failed")
		return
	}

	plans, err := r.source.Plans(ctx, models.PlanFilter{})
	if err != nil {
		logx.Warn().Err(err).Msg("refresh plans failed")
		return
	}

	rated := len(analytics.RatedPlans(plans))
	logx.Info().
		Int("providers", len(providers)).
		Int("plans", len(plans)).
		Int("rated_plans", rated).
		Msg("plan cache refreshed")
}
