package normalizer

import (
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
)

// Generic sensors publish flat documents already keyed by canonical metric
// names. Unknown keys are dropped, not stored.
func extractGeneric(payload map[string]any, reading *telemetrydomain.Reading) []string {
	var dropped []string
	for _, metric := range telemetrydomain.MetricNames {
		raw, ok := payload[metric]
		if !ok {
			continue
		}
		value, okValue := toFloat(raw)
		if !okValue {
			dropped = append(dropped, metric)
			continue
		}
		v := value
		reading.SetMetric(metric, &v)
	}

	if raw, ok := payload["status_code"]; ok {
		if code, okCode := toInt(raw); okCode {
			reading.StatusCode = &code
		} else {
			dropped = append(dropped, "status_code")
		}
	}

	return dropped
}
