package service

import (
	"context"
	"sort"
	"time"

	aggregationdomain "github.com/smallbiznis/voltgrid/internal/aggregation/domain"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Readings telemetrydomain.Service
}

type Service struct {
	log      *zap.Logger
	readings telemetrydomain.Service
}

func NewService(p ServiceParam) aggregationdomain.Service {
	return &Service{
		log:      p.Log.Named("aggregation.service"),
		readings: p.Readings,
	}
}

// GetHistory recomputes buckets from current store contents on every call.
// There is no materialized state to invalidate as new readings arrive.
func (s *Service) GetHistory(ctx context.Context, req aggregationdomain.HistoryRequest) ([]aggregationdomain.Bucket, error) {
	if req.BucketWidth <= 0 {
		return nil, aggregationdomain.ErrInvalidBucketWidth
	}

	readings, err := s.readings.Query(ctx, telemetrydomain.QueryRequest{
		EquipmentID: req.EquipmentID,
		From:        req.From,
		To:          req.To,
	})
	if err != nil {
		return nil, err
	}

	type accumulator struct {
		sum   map[string]float64
		count map[string]int
		n     int
	}

	// Bucket boundaries truncate each reading's timestamp down to a multiple
	// of the width, not to calendar boundaries of the query range. Historical
	// charts bucket data this way and consumers depend on it.
	byStart := make(map[time.Time]*accumulator)
	for i := range readings {
		start := readings[i].RecordedAt.UTC().Truncate(req.BucketWidth)
		acc, ok := byStart[start]
		if !ok {
			acc = &accumulator{
				sum:   make(map[string]float64),
				count: make(map[string]int),
			}
			byStart[start] = acc
		}
		acc.n++
		for _, metric := range telemetrydomain.MetricNames {
			// Nulls are excluded from both the sum and the denominator.
			if value := readings[i].Metric(metric); value != nil {
				acc.sum[metric] += *value
				acc.count[metric]++
			}
		}
	}

	buckets := make([]aggregationdomain.Bucket, 0, len(byStart))
	for start, acc := range byStart {
		metrics := make(map[string]float64, len(acc.sum))
		for metric, sum := range acc.sum {
			metrics[metric] = sum / float64(acc.count[metric])
		}
		buckets = append(buckets, aggregationdomain.Bucket{
			EquipmentID: req.EquipmentID,
			Start:       start,
			Width:       req.BucketWidth,
			SampleCount: acc.n,
			Metrics:     metrics,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Start.Before(buckets[j].Start)
	})
	return buckets, nil
}
