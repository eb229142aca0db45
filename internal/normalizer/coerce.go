package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// toFloat coerces numeric-or-numeric-string representations. A value that
// fails to coerce is dropped by the caller, never fatal to the reading.
func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	case string:
		trimmed := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func toInt(value any) (int64, bool) {
	parsed, ok := toFloat(value)
	if !ok {
		return 0, false
	}
	return int64(parsed), true
}

func subDocument(value any) (map[string]any, bool) {
	doc, ok := value.(map[string]any)
	return doc, ok
}
