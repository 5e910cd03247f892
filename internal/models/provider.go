package models

// Provider is an electricity retailer.
type Provider struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Website *string `json:"website,omitempty"`
}

// ProviderNames indexes providers by id.
func ProviderNames(providers []Provider) map[int64]string {
	names := make(map[int64]string, len(providers))
	for _, p := range providers {
		if _, exists := names[p.ID]; !exists {
			names[p.ID] = p.Name
		}
	}
	return names
}
