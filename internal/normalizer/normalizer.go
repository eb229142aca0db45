// Package normalizer converts raw device payloads into canonical readings.
//
// Device firmware has shipped the same semantic field under different names
// and shapes across versions; each canonical field is resolved through a
// declarative ordered fallback chain instead of runtime reflection. The
// transform is pure: identical input always yields identical output, which
// keeps backfill re-processing idempotent.
package normalizer

import (
	"errors"
	"time"

	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
)

var (
	// ErrSchemaMismatch means the payload is unrecognizable for the stated
	// category: no canonical metric could be resolved from it.
	ErrSchemaMismatch = errors.New("schema_mismatch")
)

// Result carries the canonical reading plus the fields dropped because their
// values could not be coerced to numbers.
type Result struct {
	Reading       *telemetrydomain.Reading
	DroppedFields []string
}

// Normalizer maps one raw payload into zero or one canonical reading.
type Normalizer interface {
	Normalize(category telemetrydomain.Category, payload map[string]any, reportedAt time.Time, equipmentID string) (*Result, error)
}

type normalizer struct{}

// New returns the schema normalizer.
func New() Normalizer {
	return normalizer{}
}

func (normalizer) Normalize(
	category telemetrydomain.Category,
	payload map[string]any,
	reportedAt time.Time,
	equipmentID string,
) (*Result, error) {
	if equipmentID == "" {
		return nil, telemetrydomain.ErrInvalidEquipment
	}
	if payload == nil {
		return nil, ErrSchemaMismatch
	}

	reading := &telemetrydomain.Reading{
		EquipmentID: equipmentID,
		Category:    category,
		RecordedAt:  reportedAt.UTC().Truncate(category.SamplingResolution()),
	}

	var dropped []string
	switch category {
	case telemetrydomain.CategoryMeter:
		dropped = extractMeter(payload, reading)
	case telemetrydomain.CategoryInverter:
		dropped = extractInverter(payload, reading)
	case telemetrydomain.CategoryGeneric:
		dropped = extractGeneric(payload, reading)
	default:
		return nil, telemetrydomain.ErrInvalidCategory
	}

	if reading.MetricCount() == 0 && reading.StatusCode == nil {
		return nil, ErrSchemaMismatch
	}

	return &Result{Reading: reading, DroppedFields: dropped}, nil
}
