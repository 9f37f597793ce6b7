package usecase

import (
	"strings"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
)

// Vendor action-type strings are namespaced (e.g.
// "offsite_conversion.fb_pixel_purchase"), so matching is by substring,
// not exact equality.
var conversionMarkers = []string{
	"purchase",
	"lead",
	"complete_registration",
	"add_to_cart",
}

var purchaseIdentifiers = map[string]bool{
	"offsite_conversion.fb_pixel_purchase": true,
	"omni_purchase":                        true,
}

func isConversionType(actionType string) bool {
	for _, marker := range conversionMarkers {
		if strings.Contains(actionType, marker) {
			return true
		}
	}
	return purchaseIdentifiers[actionType]
}

func isPurchaseType(actionType string) bool {
	return strings.Contains(actionType, "purchase") || purchaseIdentifiers[actionType]
}

// ExtractConversions sums the conversion events out of a row's action
// payload. The map shape only ever carried purchase and lead counts
// upstream, so that branch stays narrower than the list branch.
func ExtractConversions(p domain.ActionPayload) float64 {
	switch p.Kind {
	case domain.ActionList:
		var total float64
		for _, entry := range p.Entries {
			if isConversionType(entry.ActionType) {
				total += entry.Value
			}
		}
		return total
	case domain.ActionMap:
		return p.Values["purchase"] + p.Values["lead"]
	}
	return 0
}

// ExtractConversionValue sums the monetary value of purchase-type
// actions only.
func ExtractConversionValue(p domain.ActionPayload) float64 {
	switch p.Kind {
	case domain.ActionList:
		var total float64
		for _, entry := range p.Entries {
			if isPurchaseType(entry.ActionType) {
				total += entry.Value
			}
		}
		return total
	case domain.ActionMap:
		return p.Values["purchase"]
	}
	return 0
}
