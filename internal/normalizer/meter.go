package normalizer

import (
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
)

// meterEnvelopeKey is the legacy envelope: older meter firmware nested every
// electrical field under it, newer firmware emits the same fields at the
// document root. Presence of the key is authoritative for shape detection.
const meterEnvelopeKey = "medicao"

// meterChain resolves one canonical field from a meter document. Firmware
// shipped the same field under different letter casing across versions; the
// newer lower-case variant wins when both are present.
type meterChain struct {
	metric      string
	keys        []string
	defaultZero bool
}

// meterChains maps canonical metrics to their field-name fallback chains.
// Energy accumulators default to zero when absent; everything else stays null.
var meterChains = []meterChain{
	{metric: "active_power", keys: []string{"Pt", "PT"}},
	{metric: "reactive_power", keys: []string{"Qt", "QT"}},
	{metric: "apparent_power", keys: []string{"St", "ST"}},
	{metric: "power_factor_a", keys: []string{"FPa", "FPA"}},
	{metric: "power_factor_b", keys: []string{"FPb", "FPB"}},
	{metric: "power_factor_c", keys: []string{"FPc", "FPC"}},
	{metric: "voltage_a", keys: []string{"Ua", "UA"}},
	{metric: "voltage_b", keys: []string{"Ub", "UB"}},
	{metric: "voltage_c", keys: []string{"Uc", "UC"}},
	{metric: "current_a", keys: []string{"Ia", "IA"}},
	{metric: "current_b", keys: []string{"Ib", "IB"}},
	{metric: "current_c", keys: []string{"Ic", "IC"}},
	{metric: "energy_imported", keys: []string{"EAc", "EAC"}, defaultZero: true},
	{metric: "energy_exported", keys: []string{"EAg", "EAG"}, defaultZero: true},
	{metric: "temperature", keys: []string{"Temp", "TEMP"}},
}

var meterStatusKeys = []string{"Status", "STATUS"}

func extractMeter(payload map[string]any, reading *telemetrydomain.Reading) []string {
	doc := payload
	if envelope, ok := subDocument(payload[meterEnvelopeKey]); ok {
		doc = envelope
	}

	var dropped []string
	recognized := 0
	for _, chain := range meterChains {
		raw, key, present := resolveChain(doc, chain.keys)
		if !present {
			continue
		}
		value, ok := toFloat(raw)
		if !ok {
			dropped = append(dropped, key)
			continue
		}
		v := value
		reading.SetMetric(chain.metric, &v)
		recognized++
	}

	// Accumulator defaults apply only to an otherwise valid meter document.
	if recognized > 0 {
		for _, chain := range meterChains {
			if chain.defaultZero && reading.Metric(chain.metric) == nil {
				zero := 0.0
				reading.SetMetric(chain.metric, &zero)
			}
		}
	}

	if raw, key, present := resolveChain(doc, meterStatusKeys); present {
		if code, ok := toInt(raw); ok {
			reading.StatusCode = &code
		} else {
			dropped = append(dropped, key)
		}
	}

	return dropped
}

// resolveChain returns the first present key of the chain, in order.
func resolveChain(doc map[string]any, keys []string) (any, string, bool) {
	for _, key := range keys {
		if raw, ok := doc[key]; ok {
			return raw, key, true
		}
	}
	return nil, "", false
}
