package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

// RESTStore talks to the managed datastore's REST surface; it
// implements both domain.RowStore and domain.MetadataCache. Calls are
// rate limited so a burst of dashboard queries cannot exhaust the
// backend's request quota.
type RESTStore struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewRESTStore(baseURL, apiKey string, timeout time.Duration, ratePerSecond, burst int, logger *logger.Logger, metrics *metrics.Metrics) *RESTStore {
	return &RESTStore{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  logger,
		metrics: metrics,
	}
}

func (s *RESTStore) Store(ctx context.Context, rows []domain.DailyMetricRow) error {
	return s.post(ctx, "rows", "/metric_rows", rows)
}

func (s *RESTStore) Query(ctx context.Context, q domain.RowQuery) ([]domain.DailyMetricRow, error) {
	params := url.Values{}
	params.Set("account_id", q.AccountID)
	params.Set("level", string(q.Level))
	params.Set("from", q.From.Key())
	params.Set("to", q.To.Key())
	if q.ParentCampaignID != "" {
		params.Set("parent_campaign_id", q.ParentCampaignID)
	}
	if len(q.EntityIDs) > 0 {
		params.Set("entity_ids", strings.Join(q.EntityIDs, ","))
	}

	var rows []domain.DailyMetricRow
	if err := s.get(ctx, "rows", "/metric_rows", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *RESTStore) Put(ctx context.Context, accountID string, entries []domain.EntityMeta) error {
	type metaUpload struct {
		AccountID string              `json:"account_id"`
		Entries   []domain.EntityMeta `json:"entries"`
	}
	return s.post(ctx, "metadata", "/entity_meta", metaUpload{AccountID: accountID, Entries: entries})
}

func (s *RESTStore) Lookup(ctx context.Context, accountID string, level domain.Level, entityIDs []string) ([]domain.EntityMeta, error) {
	params := url.Values{}
	params.Set("account_id", accountID)
	params.Set("level", string(level))
	if len(entityIDs) > 0 {
		params.Set("entity_ids", strings.Join(entityIDs, ","))
	}

	var entries []domain.EntityMeta
	if err := s.get(ctx, "metadata", "/entity_meta", params, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *RESTStore) get(ctx context.Context, store, path string, params url.Values, out any) error {
	start := time.Now()

	if err := s.limiter.Wait(ctx); err != nil {
		s.metrics.RecordStoreFailure(store, "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		s.metrics.RecordStoreFailure(store, "request_creation")
		return fmt.Errorf("failed to create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordStoreFailure(store, "network_error")
		return fmt.Errorf("datastore request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode != http.StatusOK {
		s.metrics.RecordStoreQuery(store, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return fmt.Errorf("datastore returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.RecordStoreFailure(store, "read_body")
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		s.metrics.RecordStoreFailure(store, "json_parse")
		return fmt.Errorf("failed to parse datastore response: %w", err)
	}

	s.metrics.RecordStoreQuery(store, "success", duration)

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"path":     path,
		"duration": duration,
	}).Debug("Datastore query completed")

	return nil
}

func (s *RESTStore) post(ctx context.Context, store, path string, payload any) error {
	start := time.Now()

	if err := s.limiter.Wait(ctx); err != nil {
		s.metrics.RecordStoreFailure(store, "rate_limit")
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		s.metrics.RecordStoreFailure(store, "json_marshal")
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		s.metrics.RecordStoreFailure(store, "request_creation")
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		s.metrics.RecordStoreFailure(store, "network_error")
		return fmt.Errorf("datastore request failed: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.metrics.RecordStoreQuery(store, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return fmt.Errorf("datastore returned status %d", resp.StatusCode)
	}

	s.metrics.RecordStoreQuery(store, "success", duration)
	return nil
}

func (s *RESTStore) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
}
