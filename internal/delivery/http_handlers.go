package delivery

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
	"github.com/groovv-ia/AdsDashOps-sub004/internal/usecase"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/logger"
	"github.com/groovv-ia/AdsDashOps-sub004/pkg/metrics"
)

// handles HTTP requests
type HTTPHandlers struct {
	insights *usecase.InsightsService
	intake   *usecase.IntakeService
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewHTTPHandlers(
	insights *usecase.InsightsService,
	intake *usecase.IntakeService,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *HTTPHandlers {
	return &HTTPHandlers{
		insights: insights,
		intake:   intake,
		logger:   logger,
		metrics:  metrics,
	}
}

// GetInsights returns per-entity aggregates sorted by spend descending.
func (h *HTTPHandlers) GetInsights(c *gin.Context) {
	query, ok := h.parseInsightsQuery(c)
	if !ok {
		return
	}

	aggregates, err := h.insights.Aggregate(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, "Failed to aggregate insights", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       aggregates,
		"count":      len(aggregates),
		"request_id": c.GetString("request_id"),
	})
}

// GetCampaignChildren drills one campaign down to its adsets or ads.
func (h *HTTPHandlers) GetCampaignChildren(c *gin.Context) {
	campaignID := c.Param("id")

	account := c.Query("account")
	if account == "" {
		h.badRequest(c, "account parameter is required")
		return
	}

	level, err := domain.ParseLevel(c.DefaultQuery("level", string(domain.LevelAdSet)))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	aggregates, err := h.insights.ChildAggregates(c.Request.Context(), account, campaignID, level, from, to)
	if err != nil {
		if strings.Contains(err.Error(), "cannot be a campaign child") {
			h.badRequest(c, err.Error())
			return
		}
		h.serverError(c, "Failed to aggregate campaign children", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":        aggregates,
		"count":       len(aggregates),
		"campaign_id": campaignID,
		"level":       level,
		"request_id":  c.GetString("request_id"),
	})
}

// GetEntityDaily returns one entity's per-day chart points.
func (h *HTTPHandlers) GetEntityDaily(c *gin.Context) {
	entityID := c.Param("id")

	account := c.Query("account")
	if account == "" {
		h.badRequest(c, "account parameter is required")
		return
	}

	level, err := domain.ParseLevel(c.DefaultQuery("level", string(domain.LevelCampaign)))
	if err != nil {
		h.badRequest(c, err.Error())
		return
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return
	}

	points, err := h.insights.DailySeries(c.Request.Context(), account, entityID, level, from, to)
	if err != nil {
		h.serverError(c, "Failed to build daily series", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       points,
		"count":      len(points),
		"entity_id":  entityID,
		"request_id": c.GetString("request_id"),
	})
}

// GetSummary returns portfolio totals and ratios over those totals.
func (h *HTTPHandlers) GetSummary(c *gin.Context) {
	query, ok := h.parseInsightsQuery(c)
	if !ok {
		return
	}

	summary, err := h.insights.Summary(c.Request.Context(), query.AccountID, query.Level, query.From, query.To)
	if err != nil {
		h.serverError(c, "Failed to build summary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":    summary,
		"request_id": c.GetString("request_id"),
	})
}

// ExportInsightsCSV streams the aggregates as a CSV download.
func (h *HTTPHandlers) ExportInsightsCSV(c *gin.Context) {
	query, ok := h.parseInsightsQuery(c)
	if !ok {
		return
	}

	aggregates, err := h.insights.Aggregate(c.Request.Context(), query)
	if err != nil {
		h.serverError(c, "Failed to aggregate insights for export", err)
		return
	}

	payload, err := usecase.ExportCSV(aggregates)
	if err != nil {
		h.serverError(c, "Failed to render CSV", err)
		return
	}

	filename := "insights_" + string(query.Level) + "_" + query.From.Key() + "_" + query.To.Key() + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", payload)
}

// PostRows accepts a row batch from the external sync.
func (h *HTTPHandlers) PostRows(c *gin.Context) {
	var batch domain.RowBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if len(batch.Rows) == 0 {
		h.badRequest(c, "rows must not be empty")
		return
	}

	accepted, err := h.intake.StoreRows(c.Request.Context(), "http", batch.Rows)
	if err != nil {
		h.serverError(c, "Failed to store rows", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"accepted":   accepted,
		"rejected":   len(batch.Rows) - accepted,
		"request_id": c.GetString("request_id"),
	})
}

// PutEntityMeta refreshes the entity metadata cache for an account.
func (h *HTTPHandlers) PutEntityMeta(c *gin.Context) {
	account := c.Query("account")
	if account == "" {
		h.badRequest(c, "account parameter is required")
		return
	}

	var entries []domain.EntityMeta
	if err := c.ShouldBindJSON(&entries); err != nil {
		h.badRequest(c, "invalid request body: "+err.Error())
		return
	}

	if err := h.intake.StoreMetadata(c.Request.Context(), account, entries); err != nil {
		h.serverError(c, "Failed to store entity metadata", err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"accepted":   len(entries),
		"request_id": c.GetString("request_id"),
	})
}

// GetAPIInfo returns API v1 information and available endpoints
func (h *HTTPHandlers) GetAPIInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_version": "v1",
		"service":     "ads insights service",
		"description": "Aggregates synced ad-platform metric rows into entity-level performance insights",
		"endpoints": gin.H{
			"insights": gin.H{
				"path":       "/api/v1/insights",
				"parameters": "account (required), level, from, to, entity_ids",
			},
			"campaign_children": gin.H{
				"path":       "/api/v1/insights/campaigns/:id/children",
				"parameters": "account (required), level (adset|ad), from, to",
			},
			"entity_daily": gin.H{
				"path":       "/api/v1/insights/entities/:id/daily",
				"parameters": "account (required), level, from, to",
			},
			"summary": gin.H{
				"path":       "/api/v1/insights/summary",
				"parameters": "account (required), level, from, to",
			},
			"export": gin.H{
				"path":       "/api/v1/export/insights.csv",
				"parameters": "account (required), level, from, to",
			},
			"rows": gin.H{
				"path":   "/api/v1/rows",
				"method": "POST",
			},
			"entity_meta": gin.H{
				"path":   "/api/v1/entity-meta",
				"method": "POST",
			},
		},
		"derived_metrics": gin.H{
			"ctr":             "clicks / impressions * 100",
			"cpc":             "spend / clicks",
			"cpm":             "spend / impressions * 1000",
			"frequency":       "impressions / reach",
			"roas":            "conversion_value / spend",
			"cost_per_result": "spend / conversions",
		},
		"request_id": c.GetString("request_id"),
	})
}

// HealthCheck returns the health status of the service
func (h *HTTPHandlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "ads-insights",
	})
}

func (h *HTTPHandlers) parseInsightsQuery(c *gin.Context) (domain.RowQuery, bool) {
	account := c.Query("account")
	if account == "" {
		h.badRequest(c, "account parameter is required")
		return domain.RowQuery{}, false
	}

	level, err := domain.ParseLevel(c.DefaultQuery("level", string(domain.LevelCampaign)))
	if err != nil {
		h.badRequest(c, err.Error())
		return domain.RowQuery{}, false
	}

	from, to, ok := h.parseDateRange(c)
	if !ok {
		return domain.RowQuery{}, false
	}

	var entityIDs []string
	if raw := c.Query("entity_ids"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				entityIDs = append(entityIDs, id)
			}
		}
	}

	return domain.RowQuery{
		AccountID: account,
		Level:     level,
		EntityIDs: entityIDs,
		From:      from,
		To:        to,
	}, true
}

// parseDateRange defaults to the last 28 days, the dashboard's default
// window.
func (h *HTTPHandlers) parseDateRange(c *gin.Context) (domain.Day, domain.Day, bool) {
	to := domain.DayOf(time.Now())
	from := domain.DayOf(time.Now().AddDate(0, 0, -28))

	if fromStr := c.Query("from"); fromStr != "" {
		parsed, err := domain.ParseDay(fromStr)
		if err != nil {
			h.badRequest(c, "invalid from date: must be YYYY-MM-DD")
			return domain.Day{}, domain.Day{}, false
		}
		from = parsed
	}

	if toStr := c.Query("to"); toStr != "" {
		parsed, err := domain.ParseDay(toStr)
		if err != nil {
			h.badRequest(c, "invalid to date: must be YYYY-MM-DD")
			return domain.Day{}, domain.Day{}, false
		}
		to = parsed
	}

	if from.After(to.Time) {
		h.badRequest(c, "from must not be after to")
		return domain.Day{}, domain.Day{}, false
	}

	return from, to, true
}

func (h *HTTPHandlers) badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":      "Invalid parameters",
		"message":    message,
		"request_id": c.GetString("request_id"),
	})
}

func (h *HTTPHandlers) serverError(c *gin.Context, message string, err error) {
	h.logger.WithContext(c.Request.Context()).WithError(err).Error(message)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error":      message,
		"message":    err.Error(),
		"request_id": c.GetString("request_id"),
	})
}
