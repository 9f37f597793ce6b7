package delivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/infrastructure"
	"github.com/groovv-ia/AdsDashOps-sub004/internal/usecase"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

func newTestRouter() *gin.Engine {
	log := logger.NoOp()
	m := metrics.NewWith(prometheus.NewRegistry())

	rows := infrastructure.NewMemoryRowStore(log)
	cache := infrastructure.NewMemoryMetadataCache(log)

	insights := usecase.NewInsightsService(rows, cache, log, m)
	intake := usecase.NewIntakeService(rows, cache, log, m)

	handlers := NewHTTPHandlers(insights, intake, log, m)
	return NewHTTPRouter(handlers, log, m).SetupRoutes()
}

func doRequest(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, _ := json.Marshal(body)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postSampleRows(t *testing.T, router *gin.Engine) {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/v1/rows", map[string]any{
		"rows": []map[string]any{
			{
				"date": "2025-01-01", "entity_id": "camp_1", "entity_name": "Spring Sale",
				"level": "campaign", "account_id": "acct_1",
				"impressions": 1000, "clicks": 20, "spend": 50, "reach": 800,
				"actions": []map[string]any{{"action_type": "omni_purchase", "value": 2}},
			},
			{
				"date": "2025-01-02", "entity_id": "camp_1", "entity_name": "Spring Sale",
				"level": "campaign", "account_id": "acct_1",
				"impressions": 2000, "clicks": 30, "spend": 70, "reach": 1500,
			},
			{
				"date": "2025-01-01", "entity_id": "camp_2", "entity_name": "Brand Push",
				"level": "campaign", "account_id": "acct_1",
				"impressions": 500, "clicks": 5, "spend": 200, "reach": 400,
			},
		},
	})
	require.Equal(t, http.StatusAccepted, w.Code)
}

func TestGetInsightsRequiresAccount(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodGet, "/api/v1/insights", nil)
	require.Equal(http.StatusBadRequest, w.Code)
	require.Contains(w.Body.String(), "account parameter is required")
}

func TestGetInsightsRejectsBadLevel(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodGet, "/api/v1/insights?account=acct_1&level=keyword", nil)
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestGetInsightsRejectsInvertedRange(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodGet,
		"/api/v1/insights?account=acct_1&from=2025-02-01&to=2025-01-01", nil)
	require.Equal(http.StatusBadRequest, w.Code)
	require.Contains(w.Body.String(), "from must not be after to")
}

func TestPostRowsThenGetInsights(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	postSampleRows(t, router)

	w := doRequest(router, http.MethodGet,
		"/api/v1/insights?account=acct_1&level=campaign&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
		Data  []struct {
			EntityID    string  `json:"entity_id"`
			EntityName  string  `json:"entity_name"`
			Spend       float64 `json:"spend"`
			Impressions int64   `json:"impressions"`
			Conversions float64 `json:"conversions"`
			CTR         float64 `json:"ctr"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(2, resp.Count)

	// camp_2 spent more, so it leads
	require.Equal("camp_2", resp.Data[0].EntityID)
	require.Equal(200.0, resp.Data[0].Spend)

	require.Equal("camp_1", resp.Data[1].EntityID)
	require.Equal("Spring Sale", resp.Data[1].EntityName)
	require.Equal(int64(3000), resp.Data[1].Impressions)
	require.Equal(120.0, resp.Data[1].Spend)
	require.Equal(2.0, resp.Data[1].Conversions)
	require.InDelta(50.0/3000.0*100, resp.Data[1].CTR, 1e-9)
}

func TestPostRowsReportsRejections(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodPost, "/api/v1/rows", map[string]any{
		"rows": []map[string]any{
			{
				"date": "2025-01-01", "entity_id": "camp_1", "level": "campaign",
				"account_id": "acct_1", "impressions": 100, "clicks": 1, "spend": 5, "reach": 90,
			},
			{
				"date": "bad-date", "entity_id": "camp_2", "level": "campaign",
				"account_id": "acct_1",
			},
		},
	})
	require.Equal(http.StatusAccepted, w.Code)

	var resp struct {
		Accepted int `json:"accepted"`
		Rejected int `json:"rejected"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(1, resp.Accepted)
	require.Equal(1, resp.Rejected)
}

func TestPostRowsEmptyBatch(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodPost, "/api/v1/rows", map[string]any{"rows": []any{}})
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestGetCampaignChildren(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	w := doRequest(router, http.MethodPost, "/api/v1/rows", map[string]any{
		"rows": []map[string]any{
			{
				"date": "2025-01-01", "entity_id": "adset_1", "level": "adset",
				"account_id": "acct_1", "parent_campaign_id": "camp_1",
				"impressions": 100, "clicks": 2, "spend": 10, "reach": 80,
			},
			{
				"date": "2025-01-01", "entity_id": "adset_2", "level": "adset",
				"account_id": "acct_1", "parent_campaign_id": "camp_other",
				"impressions": 100, "clicks": 2, "spend": 99, "reach": 80,
			},
		},
	})
	require.Equal(http.StatusAccepted, w.Code)

	w = doRequest(router, http.MethodGet,
		"/api/v1/insights/campaigns/camp_1/children?account=acct_1&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
		Data  []struct {
			EntityID string `json:"entity_id"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(1, resp.Count)
	require.Equal("adset_1", resp.Data[0].EntityID)

	// campaign level cannot be a child
	w = doRequest(router, http.MethodGet,
		"/api/v1/insights/campaigns/camp_1/children?account=acct_1&level=campaign", nil)
	require.Equal(http.StatusBadRequest, w.Code)
}

func TestGetEntityDaily(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	postSampleRows(t, router)

	w := doRequest(router, http.MethodGet,
		"/api/v1/insights/entities/camp_1/daily?account=acct_1&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Count int `json:"count"`
		Data  []struct {
			Date  string  `json:"date"`
			Spend float64 `json:"spend"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(2, resp.Count)
	require.Equal("2025-01-01", resp.Data[0].Date)
	require.Equal("2025-01-02", resp.Data[1].Date)
}

func TestGetSummary(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	postSampleRows(t, router)

	w := doRequest(router, http.MethodGet,
		"/api/v1/insights/summary?account=acct_1&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Summary struct {
			Entities    int     `json:"entities"`
			Impressions int64   `json:"impressions"`
			Spend       float64 `json:"spend"`
		} `json:"summary"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(2, resp.Summary.Entities)
	require.Equal(int64(3500), resp.Summary.Impressions)
	require.Equal(320.0, resp.Summary.Spend)
}

func TestExportInsightsCSV(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	postSampleRows(t, router)

	w := doRequest(router, http.MethodGet,
		"/api/v1/export/insights.csv?account=acct_1&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)
	require.Equal("text/csv", w.Header().Get("Content-Type"))
	require.Contains(w.Header().Get("Content-Disposition"),
		`insights_campaign_2025-01-01_2025-01-07.csv`)

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(lines, 3)
	require.True(strings.HasPrefix(lines[0], "entity_id,"))
	require.True(strings.HasPrefix(lines[1], "camp_2,"))
	require.True(strings.HasPrefix(lines[2], "camp_1,"))
}

func TestPutEntityMetaEnrichesInsights(t *testing.T) {
	require := require.New(t)

	router := newTestRouter()
	postSampleRows(t, router)

	w := doRequest(router, http.MethodPost, "/api/v1/entity-meta?account=acct_1", []map[string]any{
		{
			"entity_id": "camp_2", "level": "campaign",
			"name": "Brand Push Q1", "effective_status": "PAUSED", "objective": "REACH",
		},
	})
	require.Equal(http.StatusAccepted, w.Code)

	w = doRequest(router, http.MethodGet,
		"/api/v1/insights?account=acct_1&from=2025-01-01&to=2025-01-07", nil)
	require.Equal(http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			EntityID string `json:"entity_id"`
			Status   string `json:"status"`
		} `json:"data"`
	}
	require.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal("camp_2", resp.Data[0].EntityID)
	require.Equal("PAUSED", resp.Data[0].Status)
}

func TestHealthCheck(t *testing.T) {
	require := require.New(t)

	w := doRequest(newTestRouter(), http.MethodGet, "/health", nil)
	require.Equal(http.StatusOK, w.Code)
	require.Contains(w.Body.String(), "healthy")
}
