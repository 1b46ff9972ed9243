package model

import (
	"encoding/json"
	"math"
)

// cleanJSONValue replaces NaN and ±Inf, which JSON cannot carry, with nil.
func cleanJSONValue(v any) any {
	switch val := v.(type) {
	case float64:
		if math.IsInf(val, 0) || math.IsNaN(val) {
			return nil
		}
		return val
	case map[string]any:
		cleaned := make(map[string]any, len(val))
		for k, item := range val {
			cleaned[k] = cleanJSONValue(item)
		}
		return cleaned
	case []any:
		cleaned := make([]any, len(val))
		for i, item := range val {
			cleaned[i] = cleanJSONValue(item)
		}
		return cleaned
	default:
		return v
	}
}

// ValidateJSON marshals data after dropping non-finite floats.
func ValidateJSON(data map[string]any) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(cleanJSONValue(data))
}
