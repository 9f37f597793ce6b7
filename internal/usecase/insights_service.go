package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

// InsightsService is the aggregation engine: it folds daily metric rows
// into per-entity aggregates, enriched from the metadata cache. No
// state survives between calls.
type InsightsService struct {
	rows    domain.RowStore
	cache   domain.MetadataCache
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewInsightsService(
	rows domain.RowStore,
	cache domain.MetadataCache,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *InsightsService {
	return &InsightsService{
		rows:    rows,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Aggregate runs one aggregation pass: fetch rows and metadata, fold,
// derive, sort by spend descending. Upstream failures propagate
// unchanged; there is no partial result.
func (s *InsightsService) Aggregate(ctx context.Context, q domain.RowQuery) ([]domain.EntityAggregate, error) {
	start := time.Now()
	log := s.logger.WithContext(ctx)

	rows, metas, err := s.fetchInputs(ctx, q)
	if err != nil {
		s.metrics.RecordAggregation(string(q.Level), "failed", 0, time.Since(start))
		return nil, err
	}

	metaByID := make(map[string]domain.EntityMeta, len(metas))
	for _, meta := range metas {
		metaByID[meta.EntityID] = meta
	}

	aggregates := foldAggregates(q, rows, metaByID)

	s.metrics.RecordAggregation(string(q.Level), "success", len(rows), time.Since(start))
	log.WithFields(map[string]any{
		"account":    q.AccountID,
		"level":      q.Level,
		"rows":       len(rows),
		"aggregates": len(aggregates),
		"duration":   time.Since(start),
	}).Info("Aggregation pass completed")

	return aggregates, nil
}

// ChildAggregates aggregates the adset or ad rows belonging to one
// campaign. Same fold, narrowed by parent linkage; no child rows means
// an empty result, not an error.
func (s *InsightsService) ChildAggregates(ctx context.Context, accountID, campaignID string, level domain.Level, from, to domain.Day) ([]domain.EntityAggregate, error) {
	if level != domain.LevelAdSet && level != domain.LevelAd {
		return nil, fmt.Errorf("level %q cannot be a campaign child", level)
	}

	return s.Aggregate(ctx, domain.RowQuery{
		AccountID:        accountID,
		Level:            level,
		ParentCampaignID: campaignID,
		From:             from,
		To:               to,
	})
}

// DailySeries maps one entity's rows to chart points ordered by date
// ascending. Vendor-reported per-day ctr/cpc/cpm pass through when the
// row carries them; roas and cost-per-result are derived from that
// day's own counters.
func (s *InsightsService) DailySeries(ctx context.Context, accountID, entityID string, level domain.Level, from, to domain.Day) ([]domain.DailyPoint, error) {
	rows, err := s.rows.Query(ctx, domain.RowQuery{
		AccountID: accountID,
		Level:     level,
		EntityIDs: []string{entityID},
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query rows for daily series: %w", err)
	}

	points := make([]domain.DailyPoint, 0, len(rows))
	for _, row := range rows {
		conversions := ExtractConversions(row.Actions)
		conversionValue := ExtractConversionValue(row.ActionValues)

		point := domain.DailyPoint{
			Date:            row.Date,
			EntityID:        row.EntityID,
			Impressions:     row.Impressions,
			Clicks:          row.Clicks,
			Spend:           row.Spend,
			Reach:           row.Reach,
			Conversions:     conversions,
			ConversionValue: conversionValue,
			CTR:             row.CTR,
			CPC:             row.CPC,
			CPM:             row.CPM,
			ROAS:            safeROAS(conversionValue, row.Spend),
			CostPerResult:   safeCostPerResult(row.Spend, conversions),
		}
		if point.CTR == 0 {
			point.CTR = safeCTR(row.Clicks, row.Impressions)
		}
		if point.CPC == 0 {
			point.CPC = safeCPC(row.Spend, row.Clicks)
		}
		if point.CPM == 0 {
			point.CPM = safeCPM(row.Spend, row.Impressions)
		}
		points = append(points, point)
	}

	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date.Time)
	})

	return points, nil
}

// Summary rolls every aggregate in range up into portfolio totals with
// ratios computed over those totals.
func (s *InsightsService) Summary(ctx context.Context, accountID string, level domain.Level, from, to domain.Day) (*domain.Summary, error) {
	aggregates, err := s.Aggregate(ctx, domain.RowQuery{
		AccountID: accountID,
		Level:     level,
		From:      from,
		To:        to,
	})
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		From:     from,
		To:       to,
		Level:    level,
		Entities: len(aggregates),
	}

	for _, a := range aggregates {
		summary.Impressions += a.Impressions
		summary.Clicks += a.Clicks
		summary.Spend += a.Spend
		summary.Reach += a.Reach
		summary.Conversions += a.Conversions
		summary.ConversionValue += a.ConversionValue
	}

	summary.CTR = safeCTR(summary.Clicks, summary.Impressions)
	summary.CPC = safeCPC(summary.Spend, summary.Clicks)
	summary.CPM = safeCPM(summary.Spend, summary.Impressions)
	summary.Frequency = safeFrequency(summary.Impressions, summary.Reach)
	summary.ROAS = safeROAS(summary.ConversionValue, summary.Spend)
	summary.CostPerResult = safeCostPerResult(summary.Spend, summary.Conversions)

	return summary, nil
}

// fetchInputs issues the row and metadata reads concurrently; the two
// are independent, and both happen before the fold so the fold loop
// never calls out.
func (s *InsightsService) fetchInputs(ctx context.Context, q domain.RowQuery) ([]domain.DailyMetricRow, []domain.EntityMeta, error) {
	var (
		rows    []domain.DailyMetricRow
		metas   []domain.EntityMeta
		rowErr  error
		metaErr error
	)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		rows, rowErr = s.rows.Query(ctx, q)
	}()

	go func() {
		defer wg.Done()
		metas, metaErr = s.cache.Lookup(ctx, q.AccountID, q.Level, q.EntityIDs)
	}()

	wg.Wait()

	if rowErr != nil {
		return nil, nil, fmt.Errorf("row store query failed: %w", rowErr)
	}
	if metaErr != nil {
		return nil, nil, fmt.Errorf("metadata cache lookup failed: %w", metaErr)
	}

	return rows, metas, nil
}

// foldAggregates is the single-pass fold: one aggregate per distinct
// entity id, counters added, date range tracked, ratios derived once at
// the end. Input row order does not matter.
func foldAggregates(q domain.RowQuery, rows []domain.DailyMetricRow, metaByID map[string]domain.EntityMeta) []domain.EntityAggregate {
	byEntity := make(map[string]*domain.EntityAggregate)

	for _, row := range rows {
		conversions := ExtractConversions(row.Actions)
		conversionValue := ExtractConversionValue(row.ActionValues)

		aggregate, seen := byEntity[row.EntityID]
		if !seen {
			meta := metaByID[row.EntityID]

			name := row.EntityName
			if name == "" {
				name = meta.Name
			}
			if name == "" {
				name = row.EntityID
			}

			status := meta.EffectiveStatus
			if status == "" {
				status = q.Level.DefaultStatus()
			}

			byEntity[row.EntityID] = &domain.EntityAggregate{
				EntityID:        row.EntityID,
				EntityName:      name,
				Level:           q.Level,
				AccountID:       q.AccountID,
				Status:          status,
				Objective:       meta.Objective,
				Budget:          meta.Budget(),
				Impressions:     row.Impressions,
				Clicks:          row.Clicks,
				Spend:           row.Spend,
				Reach:           row.Reach,
				Conversions:     conversions,
				ConversionValue: conversionValue,
				FirstDate:       row.Date,
				LastDate:        row.Date,
				DaysWithData:    1,
			}
			continue
		}

		aggregate.Impressions += row.Impressions
		aggregate.Clicks += row.Clicks
		aggregate.Spend += row.Spend
		aggregate.Reach += row.Reach
		aggregate.Conversions += conversions
		aggregate.ConversionValue += conversionValue
		if row.Date.Before(aggregate.FirstDate.Time) {
			aggregate.FirstDate = row.Date
		}
		if row.Date.After(aggregate.LastDate.Time) {
			aggregate.LastDate = row.Date
		}
		aggregate.DaysWithData++
	}

	aggregates := make([]domain.EntityAggregate, 0, len(byEntity))
	for _, aggregate := range byEntity {
		computeDerived(aggregate)
		aggregates = append(aggregates, *aggregate)
	}

	// Spend descending; entity id breaks ties so output is deterministic.
	sort.Slice(aggregates, func(i, j int) bool {
		if aggregates[i].Spend != aggregates[j].Spend {
			return aggregates[i].Spend > aggregates[j].Spend
		}
		return aggregates[i].EntityID < aggregates[j].EntityID
	})

	return aggregates
}
