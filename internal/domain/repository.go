package domain

import "context"

// RowQuery scopes one aggregation call: one account, one level, one
// date range, optionally narrowed to an entity set or to the children
// of a campaign.
type RowQuery struct {
	AccountID        string
	Level            Level
	EntityIDs        []string
	ParentCampaignID string
	From             Day
	To               Day
}

// interface for the row store (the managed datastore rows are synced
// into); result ordering is arbitrary
type RowStore interface {
	Store(ctx context.Context, rows []DailyMetricRow) error
	Query(ctx context.Context, q RowQuery) ([]DailyMetricRow, error)
}

// interface for the entity metadata cache; Lookup with an empty id set
// returns every known entity for the account and level, and may return
// fewer records than requested ids
type MetadataCache interface {
	Put(ctx context.Context, accountID string, entries []EntityMeta) error
	Lookup(ctx context.Context, accountID string, level Level, entityIDs []string) ([]EntityMeta, error)
}
