package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Repository abstracts reading persistence.
type Repository interface {
	// Insert stores the reading. It reports false when the (equipment,
	// timestamp) row already existed and the insert was a conflict no-op.
	Insert(ctx context.Context, db *gorm.DB, reading *Reading) (bool, error)
	FindByKey(ctx context.Context, db *gorm.DB, equipmentID string, at time.Time) (*Reading, error)
	Range(ctx context.Context, db *gorm.DB, q QueryRequest) ([]Reading, error)
	// UpdateMetrics patches metric columns of one row, leaving the key
	// untouched. Returns the number of rows updated.
	UpdateMetrics(ctx context.Context, db *gorm.DB, equipmentID string, at time.Time, columns map[string]any) (int64, error)
	FindDuplicates(ctx context.Context, db *gorm.DB) ([]DuplicateGroup, error)
	// PurgeDuplicates removes all but the earliest-created row per duplicate
	// group. Returns the number of rows deleted.
	PurgeDuplicates(ctx context.Context, db *gorm.DB) (int64, error)
}
