package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
)

// Row as persisted. One record per (account, level, entity, date);
// re-synced days overwrite in place.
type metricRowRecord struct {
	ID               uint      `gorm:"primaryKey"`
	AccountID        string    `gorm:"uniqueIndex:idx_row_identity;index:idx_row_scope"`
	Level            string    `gorm:"uniqueIndex:idx_row_identity;index:idx_row_scope"`
	EntityID         string    `gorm:"uniqueIndex:idx_row_identity"`
	Date             time.Time `gorm:"uniqueIndex:idx_row_identity;index:idx_row_scope"`
	EntityName       string
	ParentCampaignID string `gorm:"index"`
	Impressions      int64
	Clicks           int64
	Spend            float64
	Reach            int64
	CTR              float64
	CPC              float64
	CPM              float64
	Actions          string `gorm:"type:text"`
	ActionValues     string `gorm:"type:text"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (metricRowRecord) TableName() string { return "daily_metric_rows" }

type entityMetaRecord struct {
	ID               uint   `gorm:"primaryKey"`
	AccountID        string `gorm:"uniqueIndex:idx_meta_identity"`
	Level            string `gorm:"uniqueIndex:idx_meta_identity"`
	EntityID         string `gorm:"uniqueIndex:idx_meta_identity"`
	Name             string
	EffectiveStatus  string
	Objective        string
	DailyBudget      float64
	LifetimeBudget   float64
	ParentCampaignID string
	ParentAdSetID    string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (entityMetaRecord) TableName() string { return "entity_metadata" }

func SetupPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	if err := db.AutoMigrate(&metricRowRecord{}, &entityMetaRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// implements domain.RowStore and domain.MetadataCache on Postgres
type PostgresStore struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewPostgresStore(db *gorm.DB, logger *logger.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (s *PostgresStore) Store(ctx context.Context, rows []domain.DailyMetricRow) error {
	records := make([]metricRowRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toRowRecord(row)
		if err != nil {
			return err
		}
		records = append(records, record)
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"}, {Name: "level"}, {Name: "entity_id"}, {Name: "date"},
			},
			UpdateAll: true,
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to store rows: %w", err)
	}

	s.logger.WithContext(ctx).WithField("count", len(records)).Debug("Stored rows in postgres")
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, q domain.RowQuery) ([]domain.DailyMetricRow, error) {
	tx := s.db.WithContext(ctx).
		Where("account_id = ? AND level = ?", q.AccountID, string(q.Level)).
		Where("date >= ? AND date <= ?", q.From.Time, q.To.Time)

	if q.ParentCampaignID != "" {
		tx = tx.Where("parent_campaign_id = ?", q.ParentCampaignID)
	}
	if len(q.EntityIDs) > 0 {
		tx = tx.Where("entity_id IN ?", q.EntityIDs)
	}

	var records []metricRowRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}

	rows := make([]domain.DailyMetricRow, 0, len(records))
	for _, record := range records {
		rows = append(rows, fromRowRecord(record))
	}
	return rows, nil
}

func (s *PostgresStore) Put(ctx context.Context, accountID string, entries []domain.EntityMeta) error {
	records := make([]entityMetaRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, entityMetaRecord{
			AccountID:        accountID,
			Level:            string(entry.Level),
			EntityID:         entry.EntityID,
			Name:             entry.Name,
			EffectiveStatus:  entry.EffectiveStatus,
			Objective:        entry.Objective,
			DailyBudget:      entry.DailyBudget,
			LifetimeBudget:   entry.LifetimeBudget,
			ParentCampaignID: entry.ParentCampaignID,
			ParentAdSetID:    entry.ParentAdSetID,
		})
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "account_id"}, {Name: "level"}, {Name: "entity_id"},
			},
			UpdateAll: true,
		}).
		Create(&records).Error
	if err != nil {
		return fmt.Errorf("failed to store entity metadata: %w", err)
	}
	return nil
}

func (s *PostgresStore) Lookup(ctx context.Context, accountID string, level domain.Level, entityIDs []string) ([]domain.EntityMeta, error) {
	tx := s.db.WithContext(ctx).
		Where("account_id = ? AND level = ?", accountID, string(level))
	if len(entityIDs) > 0 {
		tx = tx.Where("entity_id IN ?", entityIDs)
	}

	var records []entityMetaRecord
	if err := tx.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to look up entity metadata: %w", err)
	}

	entries := make([]domain.EntityMeta, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.EntityMeta{
			EntityID:         record.EntityID,
			Level:            domain.Level(record.Level),
			Name:             record.Name,
			EffectiveStatus:  record.EffectiveStatus,
			Objective:        record.Objective,
			DailyBudget:      record.DailyBudget,
			LifetimeBudget:   record.LifetimeBudget,
			ParentCampaignID: record.ParentCampaignID,
			ParentAdSetID:    record.ParentAdSetID,
		})
	}
	return entries, nil
}

func toRowRecord(row domain.DailyMetricRow) (metricRowRecord, error) {
	actions, err := json.Marshal(row.Actions)
	if err != nil {
		return metricRowRecord{}, fmt.Errorf("failed to encode actions: %w", err)
	}
	actionValues, err := json.Marshal(row.ActionValues)
	if err != nil {
		return metricRowRecord{}, fmt.Errorf("failed to encode action values: %w", err)
	}

	return metricRowRecord{
		AccountID:        row.AccountID,
		Level:            string(row.Level),
		EntityID:         row.EntityID,
		Date:             row.Date.Time,
		EntityName:       row.EntityName,
		ParentCampaignID: row.ParentCampaignID,
		Impressions:      row.Impressions,
		Clicks:           row.Clicks,
		Spend:            row.Spend,
		Reach:            row.Reach,
		CTR:              row.CTR,
		CPC:              row.CPC,
		CPM:              row.CPM,
		Actions:          string(actions),
		ActionValues:     string(actionValues),
	}, nil
}

func fromRowRecord(record metricRowRecord) domain.DailyMetricRow {
	row := domain.DailyMetricRow{
		Date:             domain.DayOf(record.Date),
		EntityID:         record.EntityID,
		EntityName:       record.EntityName,
		Level:            domain.Level(record.Level),
		AccountID:        record.AccountID,
		ParentCampaignID: record.ParentCampaignID,
		Impressions:      record.Impressions,
		Clicks:           record.Clicks,
		Spend:            record.Spend,
		Reach:            record.Reach,
		CTR:              record.CTR,
		CPC:              record.CPC,
		CPM:              record.CPM,
	}

	// Stored payloads were normalized at intake; decode failures leave
	// the payload as ActionNone, matching the zero-contribution rule.
	_ = json.Unmarshal([]byte(record.Actions), &row.Actions)
	_ = json.Unmarshal([]byte(record.ActionValues), &row.ActionValues)

	return row
}
