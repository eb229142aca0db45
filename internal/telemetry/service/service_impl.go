package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltgrid/internal/clock"
	"github.com/smallbiznis/voltgrid/internal/config"
	"github.com/smallbiznis/voltgrid/internal/normalizer"
	obsmetrics "github.com/smallbiznis/voltgrid/internal/observability/metrics"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	"github.com/smallbiznis/voltgrid/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Cfg        config.Config
	Repo       telemetrydomain.Repository
	Normalizer normalizer.Normalizer
	Policy     *config.IngestPolicyHolder `optional:"true"`
	Metrics    *obsmetrics.Metrics        `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID      *snowflake.Node
	clock      clock.Clock
	cfg        config.Config
	repo       telemetrydomain.Repository
	normalizer normalizer.Normalizer
	policy     *config.IngestPolicyHolder
	metrics    *obsmetrics.Metrics
}

func NewService(p ServiceParam) telemetrydomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("telemetry.service"),

		genID:      p.GenID,
		clock:      p.Clock,
		cfg:        p.Cfg,
		repo:       p.Repo,
		normalizer: p.Normalizer,
		policy:     p.Policy,
		metrics:    p.Metrics,
	}
}

// NormalizeAndIngest is the single entry point used by the transport layer.
// A malformed payload is rejected and logged; it never blocks the stream.
func (s *Service) NormalizeAndIngest(
	ctx context.Context,
	req telemetrydomain.NormalizeAndIngestRequest,
) (telemetrydomain.IngestResult, error) {

	equipmentID := strings.TrimSpace(req.EquipmentID)
	if equipmentID == "" {
		return telemetrydomain.IngestResult{}, telemetrydomain.ErrInvalidEquipment
	}

	reportedAt := req.ReportedAt
	if reportedAt.IsZero() {
		reportedAt = s.clock.Now()
	}
	if err := s.checkPolicy(reportedAt); err != nil {
		return telemetrydomain.IngestResult{}, err
	}

	result, err := s.normalizer.Normalize(req.Category, req.Payload, reportedAt, equipmentID)
	if err != nil {
		if errors.Is(err, normalizer.ErrSchemaMismatch) {
			s.log.Warn("payload rejected",
				zap.String("equipment_id", equipmentID),
				zap.String("category", string(req.Category)),
			)
			if s.metrics != nil {
				s.metrics.RecordSchemaMismatch(ctx, string(req.Category))
			}
		}
		return telemetrydomain.IngestResult{}, err
	}

	for _, field := range result.DroppedFields {
		s.log.Debug("field dropped",
			zap.String("equipment_id", equipmentID),
			zap.String("field", field),
		)
		if s.metrics != nil {
			s.metrics.RecordCoercionFailure(ctx, field)
		}
	}

	if s.cfg.IngestAuditCopy {
		result.Reading.Raw = datatypes.JSONMap(req.Payload)
	}

	return s.Ingest(ctx, result.Reading)
}

// Ingest persists one canonical reading. A second attempt for the same
// (equipment, timestamp) is a no-op reported as StatusSkipped.
func (s *Service) Ingest(ctx context.Context, reading *telemetrydomain.Reading) (telemetrydomain.IngestResult, error) {
	if reading == nil || strings.TrimSpace(reading.EquipmentID) == "" {
		return telemetrydomain.IngestResult{}, telemetrydomain.ErrInvalidEquipment
	}
	if reading.RecordedAt.IsZero() {
		return telemetrydomain.IngestResult{}, telemetrydomain.ErrInvalidRange
	}

	now := s.clock.Now()
	if reading.ID == 0 {
		reading.ID = s.genID.Generate()
	}
	reading.CreatedAt = now
	reading.UpdatedAt = now

	inserted, err := s.repo.Insert(ctx, s.db, reading)
	if err != nil {
		if db.IsDuplicateKeyErr(err) {
			return s.skipped(ctx, reading)
		}
		return telemetrydomain.IngestResult{}, storeErr(err)
	}
	if !inserted {
		return s.skipped(ctx, reading)
	}

	if s.metrics != nil {
		s.metrics.RecordIngest(ctx, string(reading.Category))
	}

	return telemetrydomain.IngestResult{
		Status:  telemetrydomain.StatusInserted,
		Reading: reading,
	}, nil
}

func (s *Service) Query(ctx context.Context, req telemetrydomain.QueryRequest) ([]telemetrydomain.Reading, error) {
	if strings.TrimSpace(req.EquipmentID) == "" {
		return nil, telemetrydomain.ErrInvalidEquipment
	}
	if !req.From.IsZero() && !req.To.IsZero() && !req.To.After(req.From) {
		return nil, telemetrydomain.ErrInvalidRange
	}

	readings, err := s.repo.Range(ctx, s.db, req)
	if err != nil {
		return nil, storeErr(err)
	}
	return readings, nil
}

// Repair corrects previously-stored scalar fields without touching the
// (equipment, timestamp) key. Used for backfilling columns that were null
// before the extraction logic learned about them.
func (s *Service) Repair(ctx context.Context, equipmentID string, at time.Time, patch telemetrydomain.Patch) error {
	if strings.TrimSpace(equipmentID) == "" {
		return telemetrydomain.ErrInvalidEquipment
	}
	if len(patch) == 0 {
		return telemetrydomain.ErrInvalidPatch
	}

	columns := make(map[string]any, len(patch)+1)
	scratch := telemetrydomain.Reading{}
	for field, value := range patch {
		v := value
		if !scratch.SetMetric(field, &v) {
			return fmt.Errorf("%w: unknown field %q", telemetrydomain.ErrInvalidPatch, field)
		}
		columns[field] = value
	}
	columns["updated_at"] = s.clock.Now()

	affected, err := s.repo.UpdateMetrics(ctx, s.db, equipmentID, at, columns)
	if err != nil {
		return storeErr(err)
	}
	if affected == 0 {
		return telemetrydomain.ErrReadingNotFound
	}

	s.log.Info("reading repaired",
		zap.String("equipment_id", equipmentID),
		zap.Time("recorded_at", at),
		zap.Int("fields", len(patch)),
	)
	return nil
}

func (s *Service) FindDuplicates(ctx context.Context) ([]telemetrydomain.DuplicateGroup, error) {
	groups, err := s.repo.FindDuplicates(ctx, s.db)
	if err != nil {
		return nil, storeErr(err)
	}
	return groups, nil
}

func (s *Service) PurgeDuplicates(ctx context.Context) (int64, error) {
	purged, err := s.repo.PurgeDuplicates(ctx, s.db)
	if err != nil {
		return 0, storeErr(err)
	}
	if purged > 0 {
		s.log.Info("duplicate readings purged", zap.Int64("rows", purged))
	}
	return purged, nil
}

func (s *Service) skipped(ctx context.Context, reading *telemetrydomain.Reading) (telemetrydomain.IngestResult, error) {
	existing, err := s.repo.FindByKey(ctx, s.db, reading.EquipmentID, reading.RecordedAt)
	if err != nil {
		return telemetrydomain.IngestResult{}, storeErr(err)
	}
	if s.metrics != nil {
		s.metrics.RecordSkip(ctx, string(reading.Category))
	}
	return telemetrydomain.IngestResult{
		Status:  telemetrydomain.StatusSkipped,
		Reading: existing,
	}, nil
}

// checkPolicy enforces the hot-reloadable timestamp bounds. Devices carry
// drifting clocks; readings outside the bounds are rejected up front.
func (s *Service) checkPolicy(reportedAt time.Time) error {
	if s.policy == nil {
		return nil
	}
	policy := s.policy.Get()
	now := s.clock.Now()

	if policy.MaxFutureSkew > 0 && reportedAt.After(now.Add(policy.MaxFutureSkew)) {
		return fmt.Errorf("%w: reported_at too far in the future", telemetrydomain.ErrInvalidRange)
	}
	if policy.MaxPastAge > 0 && reportedAt.Before(now.Add(-policy.MaxPastAge)) {
		return fmt.Errorf("%w: reported_at too old", telemetrydomain.ErrInvalidRange)
	}
	return nil
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", telemetrydomain.ErrStoreUnavailable, err)
}
