package analytics

import "energy-analyzer/internal/models"

func ratedPlan(id, providerID int64, rate float64, planType string) models.Plan {
	p := models.Plan{
		ID:            id,
		ProviderID:    providerID,
		PlanName:      "Plan " + string(rune('A'+id-1)),
		ServiceType:   models.ServiceResidential,
		Rate1000Cents: models.Float(rate),
	}
	if planType != "" {
		p.PlanType = models.String(planType)
	}
	return p
}

func unratedPlan(id, providerID int64) models.Plan {
	return models.Plan{ID: id, ProviderID: providerID, PlanName: "No Rate", ServiceType: models.ServiceResidential}
}

var testProviders = []models.Provider{
	{ID: 1, Name: "Reliant"},
	{ID: 2, Name: "TXU Energy"},
	{ID: 3, Name: "Gexa"},
}
