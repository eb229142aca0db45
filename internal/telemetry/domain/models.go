// Package domain contains persistence models for canonical telemetry readings.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Category identifies the device family a payload came from.
type Category string

const (
	CategoryMeter    Category = "meter"
	CategoryInverter Category = "inverter"
	CategoryGeneric  Category = "generic"
)

// SamplingResolution returns the natural sampling resolution of the category.
// Reading timestamps are truncated to it before storage.
func (c Category) SamplingResolution() time.Duration {
	if c == CategoryInverter {
		return time.Minute
	}
	return time.Second
}

// Reading is one normalized telemetry sample for one equipment at one
// timestamp. The unique index on (equipment_id, recorded_at) is the dedup
// invariant; a second insert for the same pair is a conflict no-op.
type Reading struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	EquipmentID string       `gorm:"type:text;not null;uniqueIndex:idx_readings_equipment_recorded,priority:1" json:"equipment_id"`
	RecordedAt  time.Time    `gorm:"not null;uniqueIndex:idx_readings_equipment_recorded,priority:2" json:"recorded_at"`
	Category    Category     `gorm:"type:text;not null" json:"category"`

	ActivePower   *float64 `json:"active_power,omitempty"`
	ReactivePower *float64 `json:"reactive_power,omitempty"`
	ApparentPower *float64 `json:"apparent_power,omitempty"`

	PowerFactorA *float64 `json:"power_factor_a,omitempty"`
	PowerFactorB *float64 `json:"power_factor_b,omitempty"`
	PowerFactorC *float64 `json:"power_factor_c,omitempty"`

	VoltageA *float64 `json:"voltage_a,omitempty"`
	VoltageB *float64 `json:"voltage_b,omitempty"`
	VoltageC *float64 `json:"voltage_c,omitempty"`

	CurrentA *float64 `json:"current_a,omitempty"`
	CurrentB *float64 `json:"current_b,omitempty"`
	CurrentC *float64 `json:"current_c,omitempty"`

	EnergyImported *float64 `json:"energy_imported,omitempty"`
	EnergyExported *float64 `json:"energy_exported,omitempty"`

	Temperature *float64 `json:"temperature,omitempty"`
	StatusCode  *int64   `json:"status_code,omitempty"`

	// Raw is the optional audit copy of the device payload.
	Raw datatypes.JSONMap `gorm:"type:jsonb" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Reading) TableName() string { return "telemetry_readings" }

// MetricNames lists the scalar metric columns, in storage order. StatusCode is
// an operational code, not a measurement, and is deliberately excluded.
var MetricNames = []string{
	"active_power",
	"reactive_power",
	"apparent_power",
	"power_factor_a",
	"power_factor_b",
	"power_factor_c",
	"voltage_a",
	"voltage_b",
	"voltage_c",
	"current_a",
	"current_b",
	"current_c",
	"energy_imported",
	"energy_exported",
	"temperature",
}

// Metric returns a pointer to the named scalar metric, or nil for unknown names.
func (r *Reading) Metric(name string) *float64 {
	switch name {
	case "active_power":
		return r.ActivePower
	case "reactive_power":
		return r.ReactivePower
	case "apparent_power":
		return r.ApparentPower
	case "power_factor_a":
		return r.PowerFactorA
	case "power_factor_b":
		return r.PowerFactorB
	case "power_factor_c":
		return r.PowerFactorC
	case "voltage_a":
		return r.VoltageA
	case "voltage_b":
		return r.VoltageB
	case "voltage_c":
		return r.VoltageC
	case "current_a":
		return r.CurrentA
	case "current_b":
		return r.CurrentB
	case "current_c":
		return r.CurrentC
	case "energy_imported":
		return r.EnergyImported
	case "energy_exported":
		return r.EnergyExported
	case "temperature":
		return r.Temperature
	default:
		return nil
	}
}

// SetMetric assigns the named scalar metric. It reports whether the name is a
// known metric column.
func (r *Reading) SetMetric(name string, value *float64) bool {
	switch name {
	case "active_power":
		r.ActivePower = value
	case "reactive_power":
		r.ReactivePower = value
	case "apparent_power":
		r.ApparentPower = value
	case "power_factor_a":
		r.PowerFactorA = value
	case "power_factor_b":
		r.PowerFactorB = value
	case "power_factor_c":
		r.PowerFactorC = value
	case "voltage_a":
		r.VoltageA = value
	case "voltage_b":
		r.VoltageB = value
	case "voltage_c":
		r.VoltageC = value
	case "current_a":
		r.CurrentA = value
	case "current_b":
		r.CurrentB = value
	case "current_c":
		r.CurrentC = value
	case "energy_imported":
		r.EnergyImported = value
	case "energy_exported":
		r.EnergyExported = value
	case "temperature":
		r.Temperature = value
	default:
		return false
	}
	return true
}

// MetricCount returns how many scalar metrics carry a value.
func (r *Reading) MetricCount() int {
	n := 0
	for _, name := range MetricNames {
		if r.Metric(name) != nil {
			n++
		}
	}
	return n
}
