package domain

// EntityAggregate is one entity's totals over a queried date range.
// Counters are summed across rows; ratios are computed once after the
// fold, never summed.
type EntityAggregate struct {
	EntityID   string  `json:"entity_id"`
	EntityName string  `json:"entity_name"`
	Level      Level   `json:"level"`
	AccountID  string  `json:"account_id"`
	Status     string  `json:"status"`
	Objective  string  `json:"objective,omitempty"`
	Budget     float64 `json:"budget,omitempty"`

	// Summed counters
	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	Spend           float64 `json:"spend"`
	Reach           int64   `json:"reach"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`

	// Derived ratios
	CTR           float64 `json:"ctr"`
	CPC           float64 `json:"cpc"`
	CPM           float64 `json:"cpm"`
	Frequency     float64 `json:"frequency"`
	ROAS          float64 `json:"roas"`
	CostPerResult float64 `json:"cost_per_result"`

	FirstDate    Day `json:"first_date"`
	LastDate     Day `json:"last_date"`
	DaysWithData int `json:"days_with_data"`
}

// DailyPoint is one entity, one date, for charting. Ratios are per-day
// values, not aggregated across days.
type DailyPoint struct {
	Date            Day     `json:"date"`
	EntityID        string  `json:"entity_id"`
	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	Spend           float64 `json:"spend"`
	Reach           int64   `json:"reach"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`
	CTR             float64 `json:"ctr"`
	CPC             float64 `json:"cpc"`
	CPM             float64 `json:"cpm"`
	ROAS            float64 `json:"roas"`
	CostPerResult   float64 `json:"cost_per_result"`
}

// Summary is the portfolio-level rollup behind the dashboard's header
// cards: totals over every aggregate in range plus ratios over those
// totals.
type Summary struct {
	From     Day   `json:"from"`
	To       Day   `json:"to"`
	Level    Level `json:"level"`
	Entities int   `json:"entities"`

	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	Spend           float64 `json:"spend"`
	Reach           int64   `json:"reach"`
	Conversions     float64 `json:"conversions"`
	ConversionValue float64 `json:"conversion_value"`

	CTR           float64 `json:"ctr"`
	CPC           float64 `json:"cpc"`
	CPM           float64 `json:"cpm"`
	Frequency     float64 `json:"frequency"`
	ROAS          float64 `json:"roas"`
	CostPerResult float64 `json:"cost_per_result"`
}
