package service

import (
	"context"

	costingdomain "github.com/smallbiznis/voltgrid/internal/costing/domain"
	"github.com/smallbiznis/voltgrid/internal/observability/metrics"
	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// bandOrder fixes the breakdown ordering in reports.
var bandOrder = []tariffdomain.Band{
	tariffdomain.BandPonta,
	tariffdomain.BandForaPonta,
	tariffdomain.BandReservado,
	tariffdomain.BandIrrigante,
}

type ServiceParam struct {
	fx.In

	Log      *zap.Logger
	Units    unitdomain.Service
	Tariffs  tariffdomain.Service
	Readings telemetrydomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	units    unitdomain.Service
	tariffs  tariffdomain.Service
	readings telemetrydomain.Service
	metrics  *metrics.Metrics
}

func NewService(p ServiceParam) costingdomain.Service {
	return &Service{
		log:      p.Log.Named("costing.service"),
		units:    p.Units,
		tariffs:  p.Tariffs,
		readings: p.Readings,
		metrics:  p.Metrics,
	}
}

// GetCost prices a unit's consumption over [From, To). Consumption comes from
// deltas between consecutive cumulative energy readings; each interval is
// classified by its midpoint so an interval straddling a band boundary lands
// in the band covering most of it.
func (s *Service) GetCost(ctx context.Context, req costingdomain.CostRequest) (*costingdomain.CostReport, error) {
	if !req.From.Before(req.To) {
		return nil, costingdomain.ErrInvalidPeriod
	}

	unit, err := s.units.GetByCode(ctx, req.UnitCode)
	if err != nil {
		return nil, err
	}

	sched, err := s.tariffs.GetByConcessionaire(ctx, unit.Concessionaire)
	if err != nil {
		return nil, err
	}

	readings, err := s.readings.Query(ctx, telemetrydomain.QueryRequest{
		EquipmentID: unit.EquipmentID,
		From:        req.From,
		To:          req.To,
	})
	if err != nil {
		return nil, err
	}

	report := &costingdomain.CostReport{
		UnitCode:       unit.Code,
		EquipmentID:    unit.EquipmentID,
		Concessionaire: unit.Concessionaire,
		From:           req.From,
		To:             req.To,
	}

	consumption := make(map[tariffdomain.Band]float64)
	var prev *telemetrydomain.Reading
	for i := range readings {
		if readings[i].EnergyImported == nil {
			continue
		}
		cur := &readings[i]
		if prev != nil {
			delta := *cur.EnergyImported - *prev.EnergyImported
			if delta < 0 {
				// Meter reset or swap. The interval is unusable.
				report.FlaggedSamples++
				s.metrics.RecordNegativeDelta(ctx, unit.EquipmentID)
				s.log.Warn("negative energy delta discarded",
					zap.String("equipment_id", unit.EquipmentID),
					zap.Time("recorded_at", cur.RecordedAt),
					zap.Float64("delta_kwh", delta),
				)
			} else if delta > 0 {
				midpoint := prev.RecordedAt.Add(cur.RecordedAt.Sub(prev.RecordedAt) / 2)
				band := tariffdomain.Classify(sched, midpoint)
				consumption[band] += delta
			}
		}
		prev = cur
	}

	for _, band := range bandOrder {
		kwh, ok := consumption[band]
		if !ok || kwh == 0 {
			continue
		}
		rate := sched.RateFor(band)
		if rate == nil {
			return nil, costingdomain.ErrRateNotConfigured
		}

		energyRate := rate.EnergyRate
		if band == tariffdomain.BandIrrigante && unit.Irrigation && sched.IrrigationDiscountPct > 0 {
			discount := sched.IrrigationDiscountPct / 100
			report.IrrigationSavingsCents += roundMoney(kwh * rate.EnergyRate * discount)
			energyRate *= 1 - discount
		}

		report.Windows = append(report.Windows, costingdomain.WindowCost{
			Band:        band,
			EnergyKWh:   kwh,
			AmountCents: roundMoney(kwh * (rate.DistributionRate + energyRate)),
		})
	}

	s.priceDemand(unit, sched, readings, report)

	for _, w := range report.Windows {
		report.TotalCents += w.AmountCents
	}
	report.TotalCents += report.DemandAmountCents

	s.metrics.RecordCostReport(ctx, unit.Concessionaire)
	return report, nil
}

// priceDemand bills demand at the rate of the band the measured peak occurred
// in. The contracted demand is a floor: the unit pays for at least the kW its
// contract reserves, and for the measured peak when it exceeds the contract.
func (s *Service) priceDemand(unit *unitdomain.ConsumingUnit, sched *tariffdomain.Schedule, readings []telemetrydomain.Reading, report *costingdomain.CostReport) {
	peakIdx := -1
	for i := range readings {
		if readings[i].ActivePower == nil {
			continue
		}
		if peakIdx < 0 || *readings[i].ActivePower > *readings[peakIdx].ActivePower {
			peakIdx = i
		}
	}
	if peakIdx < 0 {
		return
	}

	report.DemandPeakKW = *readings[peakIdx].ActivePower
	report.DemandBilledKW = report.DemandPeakKW
	if unit.ContractedDemandKW > report.DemandBilledKW {
		report.DemandBilledKW = unit.ContractedDemandKW
	}
	band := tariffdomain.Classify(sched, readings[peakIdx].RecordedAt)
	if rate := sched.RateFor(band); rate != nil {
		report.DemandAmountCents = roundMoney(report.DemandBilledKW * rate.DemandRate)
	}
}
