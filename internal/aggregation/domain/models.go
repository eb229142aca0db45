// Package domain contains the on-demand aggregation view types.
package domain

import (
	"context"
	"errors"
	"time"
)

// Bucket is a fixed-width window averaging the readings whose timestamp falls
// in [Start, Start+Width). It is computed on demand and never persisted.
type Bucket struct {
	EquipmentID string        `json:"equipment_id"`
	Start       time.Time     `json:"start"`
	Width       time.Duration `json:"width"`
	SampleCount int           `json:"sample_count"`
	// Metrics holds the arithmetic mean per metric, computed over the
	// readings that reported a value for it. Metrics no reading reported
	// are absent, never zero.
	Metrics map[string]float64 `json:"metrics"`
}

// HistoryRequest selects the bucketed history of one equipment.
type HistoryRequest struct {
	EquipmentID string        `json:"equipment_id"`
	From        time.Time     `json:"from"`
	To          time.Time     `json:"to"`
	BucketWidth time.Duration `json:"bucket_width"`
}

// Service answers bucketed range queries over the reading store.
type Service interface {
	GetHistory(ctx context.Context, req HistoryRequest) ([]Bucket, error)
}

var (
	ErrInvalidBucketWidth = errors.New("invalid_bucket_width")
)
