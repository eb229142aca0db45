package repository

import (
	"context"
	"sort"
	"time"

	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

// New returns the gorm-backed reading repository.
func New() telemetrydomain.Repository {
	return &repo{}
}

// Insert relies on the (equipment_id, recorded_at) unique index plus a
// conflict-tolerant insert. Concurrent delivery retries for the same sample
// race on the index, never on application-level locking.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, reading *telemetrydomain.Reading) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "equipment_id"},
				{Name: "recorded_at"},
			},
			DoNothing: true,
		}).
		Create(reading)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByKey(ctx context.Context, db *gorm.DB, equipmentID string, at time.Time) (*telemetrydomain.Reading, error) {
	var reading telemetrydomain.Reading
	err := db.WithContext(ctx).
		Where("equipment_id = ? AND recorded_at = ?", equipmentID, at).
		First(&reading).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

func (r *repo) Range(ctx context.Context, db *gorm.DB, q telemetrydomain.QueryRequest) ([]telemetrydomain.Reading, error) {
	order := "recorded_at ASC"
	if q.Newest {
		order = "recorded_at DESC"
	}

	stmt := db.WithContext(ctx).
		Where("equipment_id = ?", q.EquipmentID).
		Order(order)
	if !q.From.IsZero() {
		stmt = stmt.Where("recorded_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		stmt = stmt.Where("recorded_at < ?", q.To)
	}
	if q.Limit > 0 {
		stmt = stmt.Limit(q.Limit)
	}

	var readings []telemetrydomain.Reading
	if err := stmt.Find(&readings).Error; err != nil {
		return nil, err
	}

	// Callers always receive ascending order, whichever end was capped.
	if q.Newest {
		sort.Slice(readings, func(i, j int) bool {
			return readings[i].RecordedAt.Before(readings[j].RecordedAt)
		})
	}
	return readings, nil
}

func (r *repo) UpdateMetrics(ctx context.Context, db *gorm.DB, equipmentID string, at time.Time, columns map[string]any) (int64, error) {
	result := db.WithContext(ctx).
		Model(&telemetrydomain.Reading{}).
		Where("equipment_id = ? AND recorded_at = ?", equipmentID, at).
		Updates(columns)
	return result.RowsAffected, result.Error
}

func (r *repo) FindDuplicates(ctx context.Context, db *gorm.DB) ([]telemetrydomain.DuplicateGroup, error) {
	var groups []telemetrydomain.DuplicateGroup
	err := db.WithContext(ctx).Raw(
		`SELECT equipment_id, recorded_at, COUNT(*) AS count
		 FROM telemetry_readings
		 GROUP BY equipment_id, recorded_at
		 HAVING COUNT(*) > 1
		 ORDER BY equipment_id, recorded_at`,
	).Scan(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// PurgeDuplicates keeps the earliest-created row per (equipment, timestamp)
// group, tie-broken by smallest id.
func (r *repo) PurgeDuplicates(ctx context.Context, db *gorm.DB) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`DELETE FROM telemetry_readings
		 WHERE id IN (
			SELECT id FROM (
				SELECT t.id
				FROM telemetry_readings t
				JOIN telemetry_readings keep
				  ON keep.equipment_id = t.equipment_id
				 AND keep.recorded_at = t.recorded_at
				 AND (keep.created_at < t.created_at
				   OR (keep.created_at = t.created_at AND keep.id < t.id))
			) dupes
		 )`,
	)
	return result.RowsAffected, result.Error
}
