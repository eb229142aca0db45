package normalizer

import (
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
)

// inverterPath resolves one canonical field from the inverter's nested
// document, grouped by concern. Per-string DC detail is intentionally not
// mapped; the audit copy retains it verbatim when enabled.
type inverterPath struct {
	metric string
	path   []string
}

var inverterPaths = []inverterPath{
	{metric: "active_power", path: []string{"power", "active"}},
	{metric: "reactive_power", path: []string{"power", "reactive"}},
	{metric: "apparent_power", path: []string{"power", "apparent"}},
	{metric: "energy_exported", path: []string{"energy", "total"}},
	{metric: "voltage_a", path: []string{"grid", "phase_a", "voltage"}},
	{metric: "voltage_b", path: []string{"grid", "phase_b", "voltage"}},
	{metric: "voltage_c", path: []string{"grid", "phase_c", "voltage"}},
	{metric: "current_a", path: []string{"grid", "phase_a", "current"}},
	{metric: "current_b", path: []string{"grid", "phase_b", "current"}},
	{metric: "current_c", path: []string{"grid", "phase_c", "current"}},
	{metric: "temperature", path: []string{"temperature"}},
}

func extractInverter(payload map[string]any, reading *telemetrydomain.Reading) []string {
	var dropped []string
	for _, p := range inverterPaths {
		raw, present := resolvePath(payload, p.path)
		if !present {
			continue
		}
		value, ok := toFloat(raw)
		if !ok {
			dropped = append(dropped, p.path[len(p.path)-1])
			continue
		}
		v := value
		reading.SetMetric(p.metric, &v)
	}

	// Status ships with both numeric and text representation; the numeric
	// code is canonical.
	if status, ok := subDocument(payload["status"]); ok {
		if raw, present := status["code"]; present {
			if code, okCode := toInt(raw); okCode {
				reading.StatusCode = &code
			} else {
				dropped = append(dropped, "status.code")
			}
		}
	}

	return dropped
}

func resolvePath(doc map[string]any, path []string) (any, bool) {
	current := doc
	for i, segment := range path {
		raw, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return raw, true
		}
		current, ok = subDocument(raw)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}
