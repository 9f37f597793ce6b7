package domain

import (
	"encoding/json"
	"strconv"
)

// ActionKind tags the three shapes the vendor uses for action payloads.
type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionList
	ActionMap
)

// One entry of a vendor action list. Value is normalized to a float at
// the ingestion boundary; unparsable values become 0.
type ActionEntry struct {
	ActionType string
	Value      float64
}

// ActionPayload is the tagged union replacing the vendor's duck-typed
// actions field: absent, a list of typed entries, or a flat map keyed
// by action type. The shape is decided once, when the JSON is decoded;
// anything unrecognized decays to ActionNone.
type ActionPayload struct {
	Kind    ActionKind
	Entries []ActionEntry
	Values  map[string]float64
}

func ActionListOf(entries ...ActionEntry) ActionPayload {
	return ActionPayload{Kind: ActionList, Entries: entries}
}

func ActionMapOf(values map[string]float64) ActionPayload {
	return ActionPayload{Kind: ActionMap, Values: values}
}

type rawActionEntry struct {
	ActionType    string `json:"action_type"`
	ActionTypeAlt string `json:"actionType"`
	Value         any    `json:"value"`
}

func (p *ActionPayload) UnmarshalJSON(data []byte) error {
	*p = ActionPayload{}

	trimmed := string(data)
	if trimmed == "null" || trimmed == `""` {
		return nil
	}

	var rawEntries []rawActionEntry
	if err := json.Unmarshal(data, &rawEntries); err == nil {
		entries := make([]ActionEntry, 0, len(rawEntries))
		for _, raw := range rawEntries {
			actionType := raw.ActionType
			if actionType == "" {
				actionType = raw.ActionTypeAlt
			}
			entries = append(entries, ActionEntry{
				ActionType: actionType,
				Value:      coerceFloat(raw.Value),
			})
		}
		p.Kind = ActionList
		p.Entries = entries
		return nil
	}

	var rawMap map[string]any
	if err := json.Unmarshal(data, &rawMap); err == nil {
		values := make(map[string]float64, len(rawMap))
		for actionType, value := range rawMap {
			values[actionType] = coerceFloat(value)
		}
		p.Kind = ActionMap
		p.Values = values
		return nil
	}

	// Unexpected shape: contributes nothing, never an error.
	return nil
}

func (p ActionPayload) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ActionList:
		out := make([]map[string]any, len(p.Entries))
		for i, entry := range p.Entries {
			out[i] = map[string]any{
				"action_type": entry.ActionType,
				"value":       entry.Value,
			}
		}
		return json.Marshal(out)
	case ActionMap:
		return json.Marshal(p.Values)
	}
	return []byte("null"), nil
}

func coerceFloat(v any) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return parsed
	case json.Number:
		parsed, err := value.Float64()
		if err != nil {
			return 0
		}
		return parsed
	}
	return 0
}
