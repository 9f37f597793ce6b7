package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestActionPayloadDecodeNull(t *testing.T) {
	require := require.New(t)

	var p ActionPayload
	require.NoError(json.Unmarshal([]byte(`null`), &p))
	require.Equal(ActionNone, p.Kind)
}

func TestActionPayloadDecodeList(t *testing.T) {
	require := require.New(t)

	var p ActionPayload
	err := json.Unmarshal([]byte(`[
		{"action_type":"offsite_conversion.fb_pixel_purchase","value":"3"},
		{"actionType":"link_click","value":10},
		{"action_type":"lead","value":"not-a-number"}
	]`), &p)
	require.NoError(err)
	require.Equal(ActionList, p.Kind)
	require.Len(p.Entries, 3)

	require.Equal("offsite_conversion.fb_pixel_purchase", p.Entries[0].ActionType)
	require.Equal(3.0, p.Entries[0].Value)

	// camelCase alias is accepted too
	require.Equal("link_click", p.Entries[1].ActionType)
	require.Equal(10.0, p.Entries[1].Value)

	// unparsable values normalize to 0, never NaN
	require.Equal(0.0, p.Entries[2].Value)
}

func TestActionPayloadDecodeMap(t *testing.T) {
	require := require.New(t)

	var p ActionPayload
	require.NoError(json.Unmarshal([]byte(`{"purchase":5,"lead":"2"}`), &p))
	require.Equal(ActionMap, p.Kind)
	require.Equal(5.0, p.Values["purchase"])
	require.Equal(2.0, p.Values["lead"])
}

func TestActionPayloadDecodeGarbage(t *testing.T) {
	require := require.New(t)

	for _, raw := range []string{`42`, `"text"`, `true`, `[1,2,3]`} {
		var p ActionPayload
		require.NoError(json.Unmarshal([]byte(raw), &p), raw)
		require.Equal(ActionNone, p.Kind, raw)
	}
}

func TestActionPayloadRoundTrip(t *testing.T) {
	require := require.New(t)

	original := ActionListOf(ActionEntry{ActionType: "purchase", Value: 4})
	encoded, err := json.Marshal(original)
	require.NoError(err)

	var decoded ActionPayload
	require.NoError(json.Unmarshal(encoded, &decoded))
	require.Equal(original, decoded)

	encodedNone, err := json.Marshal(ActionPayload{})
	require.NoError(err)
	require.Equal("null", string(encodedNone))
}

func TestDayParseFormats(t *testing.T) {
	require := require.New(t)

	for _, raw := range []string{"2025-03-07", "2025/03/07", "03/07/2025", "2025-03-07T10:30:00Z"} {
		day, err := ParseDay(raw)
		require.NoError(err, raw)
		require.Equal("2025-03-07", day.Key(), raw)
	}

	_, err := ParseDay("seventh of march")
	require.Error(err)
}

func TestDayJSON(t *testing.T) {
	require := require.New(t)

	day := MustDay("2025-03-07")
	encoded, err := json.Marshal(day)
	require.NoError(err)
	require.Equal(`"2025-03-07"`, string(encoded))

	var decoded Day
	require.NoError(json.Unmarshal(encoded, &decoded))
	require.True(decoded.Equal(day.Time))
}
