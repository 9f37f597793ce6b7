package infrastructure

import (
	"context"
	"sync"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
)

// implements domain.RowStore in memory, keyed by day; the default
// backend and the one tests run against
type MemoryRowStore struct {
	data   map[string][]domain.DailyMetricRow
	mutex  sync.RWMutex
	logger *logger.Logger
}

func NewMemoryRowStore(logger *logger.Logger) *MemoryRowStore {
	return &MemoryRowStore{
		data:   make(map[string][]domain.DailyMetricRow),
		logger: logger,
	}
}

func (r *MemoryRowStore) Store(ctx context.Context, rows []domain.DailyMetricRow) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, row := range rows {
		dateKey := row.Date.Key()
		r.data[dateKey] = append(r.data[dateKey], row)
	}

	r.logger.WithContext(ctx).WithField("count", len(rows)).Debug("Stored rows in memory")
	return nil
}

func (r *MemoryRowStore) Query(ctx context.Context, q domain.RowQuery) ([]domain.DailyMetricRow, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	idSet := make(map[string]struct{}, len(q.EntityIDs))
	for _, id := range q.EntityIDs {
		idSet[id] = struct{}{}
	}

	var result []domain.DailyMetricRow
	for date := q.From; !date.After(q.To.Time); date = date.Next() {
		for _, row := range r.data[date.Key()] {
			if !matchesQuery(row, q, idSet) {
				continue
			}
			result = append(result, row)
		}
	}

	return result, nil
}

func matchesQuery(row domain.DailyMetricRow, q domain.RowQuery, idSet map[string]struct{}) bool {
	if q.AccountID != "" && row.AccountID != q.AccountID {
		return false
	}
	if q.Level != "" && row.Level != q.Level {
		return false
	}
	if q.ParentCampaignID != "" && row.ParentCampaignID != q.ParentCampaignID {
		return false
	}
	if len(idSet) > 0 {
		if _, ok := idSet[row.EntityID]; !ok {
			return false
		}
	}
	return true
}

type metaKey struct {
	accountID string
	level     domain.Level
	entityID  string
}

// implements domain.MetadataCache in memory
type MemoryMetadataCache struct {
	entries map[metaKey]domain.EntityMeta
	mutex   sync.RWMutex
	logger  *logger.Logger
}

func NewMemoryMetadataCache(logger *logger.Logger) *MemoryMetadataCache {
	return &MemoryMetadataCache{
		entries: make(map[metaKey]domain.EntityMeta),
		logger:  logger,
	}
}

func (c *MemoryMetadataCache) Put(ctx context.Context, accountID string, entries []domain.EntityMeta) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, entry := range entries {
		c.entries[metaKey{accountID, entry.Level, entry.EntityID}] = entry
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"account": accountID,
		"count":   len(entries),
	}).Debug("Cached entity metadata")
	return nil
}

func (c *MemoryMetadataCache) Lookup(ctx context.Context, accountID string, level domain.Level, entityIDs []string) ([]domain.EntityMeta, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	var result []domain.EntityMeta
	if len(entityIDs) > 0 {
		for _, id := range entityIDs {
			if entry, ok := c.entries[metaKey{accountID, level, id}]; ok {
				result = append(result, entry)
			}
		}
		return result, nil
	}

	for key, entry := range c.entries {
		if key.accountID == accountID && key.level == level {
			result = append(result, entry)
		}
	}
	return result, nil
}
