package usecase

import "github.com/groovv-ia/AdsDashOps-sub004/internal/domain"

// Every ratio guards its denominator: a guarded branch yields exactly 0,
// never NaN or Inf.

func safeCTR(clicks, impressions int64) float64 {
	if impressions > 0 {
		return float64(clicks) / float64(impressions) * 100
	}
	return 0
}

func safeCPC(spend float64, clicks int64) float64 {
	if clicks > 0 {
		return spend / float64(clicks)
	}
	return 0
}

func safeCPM(spend float64, impressions int64) float64 {
	if impressions > 0 {
		return spend / float64(impressions) * 1000
	}
	return 0
}

func safeFrequency(impressions, reach int64) float64 {
	if reach > 0 {
		return float64(impressions) / float64(reach)
	}
	return 0
}

// ROAS needs both sides positive: zero revenue and zero spend collapse
// to the same sentinel.
func safeROAS(conversionValue, spend float64) float64 {
	if spend > 0 && conversionValue > 0 {
		return conversionValue / spend
	}
	return 0
}

func safeCostPerResult(spend, conversions float64) float64 {
	if conversions > 0 {
		return spend / conversions
	}
	return 0
}

// computeDerived fills an aggregate's ratio fields from its summed
// counters. Called exactly once per aggregate, after the fold, so
// intermediate rounding never compounds.
func computeDerived(a *domain.EntityAggregate) {
	a.CTR = safeCTR(a.Clicks, a.Impressions)
	a.CPC = safeCPC(a.Spend, a.Clicks)
	a.CPM = safeCPM(a.Spend, a.Impressions)
	a.Frequency = safeFrequency(a.Impressions, a.Reach)
	a.ROAS = safeROAS(a.ConversionValue, a.Spend)
	a.CostPerResult = safeCostPerResult(a.Spend, a.Conversions)
}
