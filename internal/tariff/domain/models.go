// Package domain contains time-of-use tariff schedules and classification.
package domain

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Band is a time-of-use classification.
type Band string

const (
	BandPonta     Band = "ponta"
	BandForaPonta Band = "fora_ponta"
	BandReservado Band = "reservado"
	BandIrrigante Band = "irrigante"
)

// Schedule is one concessionaire's time-of-use ruleset. Supplied by the
// surrounding application and read-only to the core; it is passed explicitly
// into the cost engine, never held as process-wide state.
type Schedule struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	Concessionaire string       `gorm:"type:text;not null;uniqueIndex" json:"concessionaire"`
	// Timezone is the IANA zone tariff clocks are defined in. Empty means
	// timestamps are classified as given.
	Timezone string `gorm:"type:text" json:"timezone"`
	// IrrigationDiscountPct reduces the energy-rate component inside the
	// irrigante band for irrigation-flagged consuming units.
	IrrigationDiscountPct float64 `gorm:"not null;default:0" json:"irrigation_discount_pct"`

	Windows []Window `gorm:"foreignKey:ScheduleID" json:"windows"`
	Rates   []Rate   `gorm:"foreignKey:ScheduleID" json:"rates"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	locOnce sync.Once
	loc     *time.Location
}

// TableName sets the database table name.
func (*Schedule) TableName() string { return "tariff_schedules" }

// Location resolves Timezone once per schedule value so classification does
// not pay the zone lookup per call. Empty or unknown zones yield nil and
// timestamps are classified as given.
func (s *Schedule) Location() *time.Location {
	s.locOnce.Do(func() {
		if s.Timezone == "" {
			return
		}
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			s.loc = loc
		}
	})
	return s.loc
}

// Window maps a day-of-week and clock-time range onto a band. Windows are
// evaluated in Position order; the first match wins.
type Window struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ScheduleID snowflake.ID `gorm:"not null;index" json:"schedule_id"`
	Position   int          `gorm:"not null" json:"position"`
	Band       Band         `gorm:"type:text;not null" json:"band"`
	// WeekdayMask is a bitmask of time.Weekday values (bit 1<<weekday).
	WeekdayMask int `gorm:"not null" json:"weekday_mask"`
	// StartMinute is inclusive, EndMinute exclusive, both minutes from
	// midnight. A window may wrap past midnight (start > end).
	StartMinute int `gorm:"not null" json:"start_minute"`
	EndMinute   int `gorm:"not null" json:"end_minute"`
	// OnHolidays marks windows that still apply on national holidays. On a
	// holiday, windows without the flag are ignored entirely.
	OnHolidays bool `gorm:"not null;default:false" json:"on_holidays"`
}

// TableName sets the database table name.
func (Window) TableName() string { return "tariff_windows" }

// Rate carries the monetary components of one band, in R$/kWh (TUSD and TE)
// and R$/kW (demand).
type Rate struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ScheduleID snowflake.ID `gorm:"not null;index" json:"schedule_id"`
	Band       Band         `gorm:"type:text;not null" json:"band"`
	// DistributionRate is the distribution-use charge (TUSD).
	DistributionRate float64 `gorm:"not null" json:"distribution_rate"`
	// EnergyRate is the energy charge (TE).
	EnergyRate float64 `gorm:"not null" json:"energy_rate"`
	// DemandRate bills measured peak demand.
	DemandRate float64 `gorm:"not null;default:0" json:"demand_rate"`
}

// TableName sets the database table name.
func (Rate) TableName() string { return "tariff_rates" }

// WeekdayMaskFor builds a window weekday bitmask.
func WeekdayMaskFor(days ...time.Weekday) int {
	mask := 0
	for _, d := range days {
		mask |= 1 << uint(d)
	}
	return mask
}

// Weekdays is the Monday..Friday mask.
var Weekdays = WeekdayMaskFor(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

// RateFor returns the rate of the band, or nil when the schedule lacks it.
func (s *Schedule) RateFor(band Band) *Rate {
	for i := range s.Rates {
		if s.Rates[i].Band == band {
			return &s.Rates[i]
		}
	}
	return nil
}
