package usecase

import (
	"context"
	"fmt"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

// IntakeService is the boundary the external sync delivers rows
// through. It validates and normalizes submissions before they reach
// the row store; bad rows are counted and skipped, never fatal.
type IntakeService struct {
	rows    domain.RowStore
	cache   domain.MetadataCache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewIntakeService(rows domain.RowStore, cache domain.MetadataCache, logger *logger.Logger, metrics *metrics.Metrics) *IntakeService {
	return &IntakeService{
		rows:    rows,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// StoreMetadata refreshes the entity metadata cache for one account.
// Entries without an id or a valid level are dropped.
func (s *IntakeService) StoreMetadata(ctx context.Context, accountID string, entries []domain.EntityMeta) error {
	kept := make([]domain.EntityMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.EntityID == "" || !entry.Level.Valid() {
			s.metrics.RecordRowRejected("metadata", "identity")
			continue
		}
		kept = append(kept, entry)
	}
	if len(kept) == 0 {
		return nil
	}

	if err := s.cache.Put(ctx, accountID, kept); err != nil {
		return fmt.Errorf("failed to store entity metadata: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"account": accountID,
		"count":   len(kept),
	}).Info("Refreshed entity metadata")
	return nil
}

// StoreRows normalizes a batch and stores what survives validation.
// Returns the number of rows accepted.
func (s *IntakeService) StoreRows(ctx context.Context, source string, batch []domain.RowSubmission) (int, error) {
	log := s.logger.WithContext(ctx)

	rows := make([]domain.DailyMetricRow, 0, len(batch))
	for _, submission := range batch {
		row, reason := normalizeRow(submission)
		if reason != "" {
			s.metrics.RecordRowRejected(source, reason)
			log.WithFields(map[string]any{
				"source":    source,
				"reason":    reason,
				"entity_id": submission.EntityID,
				"date":      submission.Date,
			}).Warn("Rejected intake row")
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return 0, nil
	}

	if err := s.rows.Store(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to store intake rows: %w", err)
	}

	s.metrics.RecordRowsIngested(source, len(rows))
	log.WithFields(map[string]any{
		"source":   source,
		"accepted": len(rows),
		"rejected": len(batch) - len(rows),
	}).Info("Stored intake rows")

	return len(rows), nil
}

// normalizeRow turns a wire submission into a domain row, or names the
// reason it cannot.
func normalizeRow(sub domain.RowSubmission) (domain.DailyMetricRow, string) {
	date, err := domain.ParseDay(sub.Date)
	if err != nil {
		return domain.DailyMetricRow{}, "date_parse"
	}

	level, err := domain.ParseLevel(sub.Level)
	if err != nil {
		return domain.DailyMetricRow{}, "level"
	}

	if sub.EntityID == "" {
		return domain.DailyMetricRow{}, "entity_id"
	}
	if sub.AccountID == "" {
		return domain.DailyMetricRow{}, "account_id"
	}
	if sub.Impressions < 0 || sub.Clicks < 0 || sub.Spend < 0 || sub.Reach < 0 {
		return domain.DailyMetricRow{}, "negative_counter"
	}
	if sub.Clicks > sub.Impressions {
		return domain.DailyMetricRow{}, "clicks_exceed_impressions"
	}

	return domain.DailyMetricRow{
		Date:             date,
		EntityID:         sub.EntityID,
		EntityName:       sub.EntityName,
		Level:            level,
		AccountID:        sub.AccountID,
		ParentCampaignID: sub.ParentCampaignID,
		Impressions:      sub.Impressions,
		Clicks:           sub.Clicks,
		Spend:            sub.Spend,
		Reach:            sub.Reach,
		CTR:              sub.CTR,
		CPC:              sub.CPC,
		CPM:              sub.CPM,
		Actions:          sub.Actions,
		ActionValues:     sub.ActionValues,
	}, ""
}
