package domain

// DailyMetricRow is one day of performance for one entity at one
// hierarchy level. Rows are immutable once read; aggregation never
// mutates them.
type DailyMetricRow struct {
	Date             Day           `json:"date"`
	EntityID         string        `json:"entity_id"`
	EntityName       string        `json:"entity_name,omitempty"`
	Level            Level         `json:"level"`
	AccountID        string        `json:"account_id"`
	ParentCampaignID string        `json:"parent_campaign_id,omitempty"`
	Impressions      int64         `json:"impressions"`
	Clicks           int64         `json:"clicks"`
	Spend            float64       `json:"spend"`
	Reach            int64         `json:"reach"`
	CTR              float64       `json:"ctr,omitempty"`
	CPC              float64       `json:"cpc,omitempty"`
	CPM              float64       `json:"cpm,omitempty"`
	Actions          ActionPayload `json:"actions,omitempty"`
	ActionValues     ActionPayload `json:"action_values,omitempty"`
}

// RowSubmission is the wire shape in which the external sync delivers
// rows, via the HTTP intake endpoint or the Kafka topic. Dates arrive
// as strings in whatever format the platform emitted.
type RowSubmission struct {
	Date             string        `json:"date"`
	EntityID         string        `json:"entity_id"`
	EntityName       string        `json:"entity_name"`
	Level            string        `json:"level"`
	AccountID        string        `json:"account_id"`
	ParentCampaignID string        `json:"parent_campaign_id"`
	Impressions      int64         `json:"impressions"`
	Clicks           int64         `json:"clicks"`
	Spend            float64       `json:"spend"`
	Reach            int64         `json:"reach"`
	CTR              float64       `json:"ctr"`
	CPC              float64       `json:"cpc"`
	CPM              float64       `json:"cpm"`
	Actions          ActionPayload `json:"actions"`
	ActionValues     ActionPayload `json:"action_values"`
}

// RowBatch is the intake request body.
type RowBatch struct {
	Rows []RowSubmission `json:"rows"`
}
