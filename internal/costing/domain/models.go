// Package domain defines cost reports for consuming units.
package domain

import (
	"context"
	"errors"
	"time"

	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
)

// WindowCost is the consumption and charge of one band over the period.
type WindowCost struct {
	Band tariffdomain.Band `json:"band"`
	// EnergyKWh sums the cumulative-meter deltas classified into the band.
	EnergyKWh float64 `json:"energy_kwh"`
	// AmountCents is EnergyKWh priced at the band's distribution plus energy
	// rates, in centavos.
	AmountCents int64 `json:"amount_cents"`
}

// CostReport is the full billing breakdown of one unit over [From, To).
type CostReport struct {
	UnitCode       string    `json:"unit_code"`
	EquipmentID    string    `json:"equipment_id"`
	Concessionaire string    `json:"concessionaire"`
	From           time.Time `json:"from"`
	To             time.Time `json:"to"`

	Windows []WindowCost `json:"windows"`

	// DemandPeakKW is the highest active-power sample seen in the period.
	DemandPeakKW float64 `json:"demand_peak_kw"`
	// DemandBilledKW is the kW the demand charge is computed from: the measured
	// peak, floored at the unit's contracted demand.
	DemandBilledKW    float64 `json:"demand_billed_kw"`
	DemandAmountCents int64   `json:"demand_amount_cents"`

	// IrrigationSavingsCents reports how much the irrigante discount removed
	// from the energy component. Informational; already reflected in Windows.
	IrrigationSavingsCents int64 `json:"irrigation_savings_cents"`

	// FlaggedSamples counts discarded negative energy deltas (meter resets or
	// replacements). Their intervals contribute no consumption.
	FlaggedSamples int `json:"flagged_samples"`

	// TotalCents is the sum of every window amount plus the demand charge.
	TotalCents int64 `json:"total_cents"`
}

// CostRequest selects the unit and billing period.
type CostRequest struct {
	UnitCode string    `json:"unit_code"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
}

// Service prices a unit's consumption over a period.
type Service interface {
	GetCost(ctx context.Context, req CostRequest) (*CostReport, error)
}

var (
	ErrInvalidPeriod = errors.New("invalid_period")
	// ErrRateNotConfigured means the schedule matched but lacks a rate for a
	// band that accrued consumption. Billing fails closed rather than pricing
	// the band at zero.
	ErrRateNotConfigured = errors.New("rate_not_configured")
)
