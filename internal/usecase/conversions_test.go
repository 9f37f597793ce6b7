package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/groovv-ia/AdsDashOps-sub004/internal/domain"
)

func TestExtractConversionsList(t *testing.T) {
	require := require.New(t)

	payload := domain.ActionListOf(
		domain.ActionEntry{ActionType: "omni_purchase", Value: 3},
		domain.ActionEntry{ActionType: "link_click", Value: 10},
	)
	require.Equal(3.0, ExtractConversions(payload))
}

func TestExtractConversionsNamespacedTypes(t *testing.T) {
	require := require.New(t)

	payload := domain.ActionListOf(
		domain.ActionEntry{ActionType: "offsite_conversion.fb_pixel_purchase", Value: 2},
		domain.ActionEntry{ActionType: "offsite_conversion.fb_pixel_add_to_cart", Value: 5},
		domain.ActionEntry{ActionType: "complete_registration", Value: 1},
		domain.ActionEntry{ActionType: "lead_grouped", Value: 4},
		domain.ActionEntry{ActionType: "video_view", Value: 100},
	)
	// substring match: namespaced purchase, add_to_cart, registration and
	// lead all count; video_view does not
	require.Equal(12.0, ExtractConversions(payload))
}

func TestExtractConversionsMap(t *testing.T) {
	require := require.New(t)

	payload := domain.ActionMapOf(map[string]float64{
		"purchase":    5,
		"lead":        2,
		"add_to_cart": 9, // the map shape only counts purchase and lead
	})
	require.Equal(7.0, ExtractConversions(payload))
}

func TestExtractConversionsNone(t *testing.T) {
	require.Equal(t, 0.0, ExtractConversions(domain.ActionPayload{}))
}

func TestExtractConversionsUnparsableValue(t *testing.T) {
	// values that failed to parse arrive as 0 from the decode boundary
	payload := domain.ActionListOf(domain.ActionEntry{ActionType: "purchase", Value: 0})
	require.Equal(t, 0.0, ExtractConversions(payload))
}

func TestExtractConversionValueList(t *testing.T) {
	require := require.New(t)

	payload := domain.ActionListOf(
		domain.ActionEntry{ActionType: "offsite_conversion.fb_pixel_purchase", Value: 120.5},
		domain.ActionEntry{ActionType: "omni_purchase", Value: 30},
		domain.ActionEntry{ActionType: "lead", Value: 99},
	)
	// only purchase-type actions carry revenue
	require.Equal(150.5, ExtractConversionValue(payload))
}

func TestExtractConversionValueMap(t *testing.T) {
	require := require.New(t)

	payload := domain.ActionMapOf(map[string]float64{"purchase": 80, "lead": 40})
	require.Equal(80.0, ExtractConversionValue(payload))

	require.Equal(0.0, ExtractConversionValue(domain.ActionPayload{}))
}
