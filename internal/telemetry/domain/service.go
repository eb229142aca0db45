package domain

import (
	"context"
	"errors"
	"time"
)

// IngestStatus reports what the store did with a reading.
type IngestStatus string

const (
	// StatusInserted means a new row was created.
	StatusInserted IngestStatus = "inserted"
	// StatusSkipped means a row for (equipment, timestamp) already existed;
	// the attempt is a no-op, not an error.
	StatusSkipped IngestStatus = "skipped"
)

// IngestResult is the outcome of one ingestion attempt.
type IngestResult struct {
	Status  IngestStatus `json:"status"`
	Reading *Reading     `json:"reading,omitempty"`
}

// NormalizeAndIngestRequest is the single entry point used by the transport
// layer (MQTT subscriber or equivalent).
type NormalizeAndIngestRequest struct {
	EquipmentID string         `json:"equipment_id"`
	Category    Category       `json:"category"`
	Payload     map[string]any `json:"payload"`
	ReportedAt  time.Time      `json:"reported_at"`
}

// QueryRequest selects readings for one equipment over [From, To).
// Newest flips the retrieval pattern to "most recent N"; results are always
// returned in ascending timestamp order.
type QueryRequest struct {
	EquipmentID string    `json:"equipment_id"`
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	Limit       int       `json:"limit"`
	Newest      bool      `json:"newest"`
}

// Patch carries corrected metric values for the administrative repair path.
// Keys must name metric columns; the (equipment, timestamp) key is immutable.
type Patch map[string]float64

// DuplicateGroup describes a (equipment, timestamp) pair stored more than
// once. Impossible in steady state; surfaced for pre-migration data only.
type DuplicateGroup struct {
	EquipmentID string    `json:"equipment_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	Count       int64     `json:"count"`
}

// Service is the ingestion and dedup store boundary.
type Service interface {
	NormalizeAndIngest(ctx context.Context, req NormalizeAndIngestRequest) (IngestResult, error)
	Ingest(ctx context.Context, reading *Reading) (IngestResult, error)
	Query(ctx context.Context, req QueryRequest) ([]Reading, error)
	Repair(ctx context.Context, equipmentID string, at time.Time, patch Patch) error
	FindDuplicates(ctx context.Context) ([]DuplicateGroup, error)
	PurgeDuplicates(ctx context.Context) (int64, error)
}

var (
	ErrInvalidEquipment = errors.New("invalid_equipment")
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrInvalidRange     = errors.New("invalid_range")
	ErrInvalidPatch     = errors.New("invalid_patch")
	ErrReadingNotFound  = errors.New("reading_not_found")
	// ErrStoreUnavailable marks a retryable storage failure. Ingestion retries
	// are idempotent by construction.
	ErrStoreUnavailable = errors.New("store_unavailable")
)
