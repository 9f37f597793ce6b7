package domain

// EntityMeta is the enrichment record kept in the entity metadata
// cache: the dashboard shows name/status/budget next to the numbers.
// The cache may know fewer entities than a query asks for; missing
// entries default silently during aggregation.
type EntityMeta struct {
	EntityID         string  `json:"entity_id"`
	Level            Level   `json:"level"`
	Name             string  `json:"name"`
	EffectiveStatus  string  `json:"effective_status"`
	Objective        string  `json:"objective"`
	DailyBudget      float64 `json:"daily_budget"`
	LifetimeBudget   float64 `json:"lifetime_budget"`
	ParentCampaignID string  `json:"parent_campaign_id,omitempty"`
	ParentAdSetID    string  `json:"parent_adset_id,omitempty"`
}

// Budget prefers the daily budget; lifetime is the fallback the
// dashboard uses for campaigns without a daily cap.
func (m EntityMeta) Budget() float64 {
	if m.DailyBudget > 0 {
		return m.DailyBudget
	}
	return m.LifetimeBudget
}
