package usecase

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
)

var exportHeader = []string{
	"entity_id", "entity_name", "level", "status", "objective",
	"impressions", "clicks", "spend", "reach",
	"conversions", "conversion_value",
	"ctr", "cpc", "cpm", "frequency", "roas", "cost_per_result",
	"first_date", "last_date", "days_with_data",
}

// ExportCSV renders aggregates in the order given; the aggregates are
// plain data, so this is a straight projection.
func ExportCSV(aggregates []domain.EntityAggregate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range aggregates {
		record := []string{
			a.EntityID,
			a.EntityName,
			string(a.Level),
			a.Status,
			a.Objective,
			strconv.FormatInt(a.Impressions, 10),
			strconv.FormatInt(a.Clicks, 10),
			formatFloat(a.Spend),
			strconv.FormatInt(a.Reach, 10),
			formatFloat(a.Conversions),
			formatFloat(a.ConversionValue),
			formatFloat(a.CTR),
			formatFloat(a.CPC),
			formatFloat(a.CPM),
			formatFloat(a.Frequency),
			formatFloat(a.ROAS),
			formatFloat(a.CostPerResult),
			a.FirstDate.Key(),
			a.LastDate.Key(),
			strconv.Itoa(a.DaysWithData),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
