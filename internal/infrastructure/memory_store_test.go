package infrastructure

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
)

func seedRows(t *testing.T, store *MemoryRowStore) {
	t.Helper()
	rows := []domain.DailyMetricRow{
		{Date: domain.MustDay("2025-01-01"), EntityID: "camp_1", Level: domain.LevelCampaign, AccountID: "acct_1", Spend: 10},
		{Date: domain.MustDay("2025-01-02"), EntityID: "camp_1", Level: domain.LevelCampaign, AccountID: "acct_1", Spend: 20},
		{Date: domain.MustDay("2025-01-02"), EntityID: "camp_2", Level: domain.LevelCampaign, AccountID: "acct_1", Spend: 30},
		{Date: domain.MustDay("2025-01-02"), EntityID: "adset_1", Level: domain.LevelAdSet, AccountID: "acct_1", ParentCampaignID: "camp_1", Spend: 5},
		{Date: domain.MustDay("2025-01-02"), EntityID: "camp_9", Level: domain.LevelCampaign, AccountID: "acct_other", Spend: 99},
		{Date: domain.MustDay("2025-02-15"), EntityID: "camp_1", Level: domain.LevelCampaign, AccountID: "acct_1", Spend: 40},
	}
	require.NoError(t, store.Store(context.Background(), rows))
}

func TestMemoryRowStoreQueryFilters(t *testing.T) {
	require := require.New(t)

	store := NewMemoryRowStore(logger.NoOp())
	seedRows(t, store)
	ctx := context.Background()

	base := domain.RowQuery{
		AccountID: "acct_1",
		Level:     domain.LevelCampaign,
		From:      domain.MustDay("2025-01-01"),
		To:        domain.MustDay("2025-01-31"),
	}

	// date range excludes the February row, account excludes acct_other
	rows, err := store.Query(ctx, base)
	require.NoError(err)
	require.Len(rows, 3)

	// entity id filter
	byID := base
	byID.EntityIDs = []string{"camp_2"}
	rows, err = store.Query(ctx, byID)
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal("camp_2", rows[0].EntityID)

	// parent linkage only matches adset rows
	byParent := base
	byParent.Level = domain.LevelAdSet
	byParent.ParentCampaignID = "camp_1"
	rows, err = store.Query(ctx, byParent)
	require.NoError(err)
	require.Len(rows, 1)
	require.Equal("adset_1", rows[0].EntityID)

	// empty range
	empty := base
	empty.From = domain.MustDay("2024-06-01")
	empty.To = domain.MustDay("2024-06-30")
	rows, err = store.Query(ctx, empty)
	require.NoError(err)
	require.Empty(rows)
}

func TestMemoryMetadataCache(t *testing.T) {
	require := require.New(t)

	cache := NewMemoryMetadataCache(logger.NoOp())
	ctx := context.Background()

	require.NoError(cache.Put(ctx, "acct_1", []domain.EntityMeta{
		{EntityID: "camp_1", Level: domain.LevelCampaign, Name: "One"},
		{EntityID: "camp_2", Level: domain.LevelCampaign, Name: "Two"},
		{EntityID: "adset_1", Level: domain.LevelAdSet, Name: "Set"},
	}))

	// explicit ids
	entries, err := cache.Lookup(ctx, "acct_1", domain.LevelCampaign, []string{"camp_1"})
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal("One", entries[0].Name)

	// no ids means everything for the account and level
	entries, err = cache.Lookup(ctx, "acct_1", domain.LevelCampaign, nil)
	require.NoError(err)
	require.Len(entries, 2)

	// unknown account is empty, not an error
	entries, err = cache.Lookup(ctx, "acct_missing", domain.LevelCampaign, nil)
	require.NoError(err)
	require.Empty(entries)

	// re-put overwrites in place
	require.NoError(cache.Put(ctx, "acct_1", []domain.EntityMeta{
		{EntityID: "camp_1", Level: domain.LevelCampaign, Name: "One Renamed"},
	}))
	entries, err = cache.Lookup(ctx, "acct_1", domain.LevelCampaign, []string{"camp_1"})
	require.NoError(err)
	require.Len(entries, 1)
	require.Equal("One Renamed", entries[0].Name)
}
