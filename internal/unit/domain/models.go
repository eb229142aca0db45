// Package domain holds consuming-unit records, the billing side of an
// equipment. Managed elsewhere; this service only reads them.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// ConsumingUnit ties a metering point to its concessionaire contract.
type ConsumingUnit struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Code string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	// EquipmentID is the meter whose readings bill against this unit.
	EquipmentID    string `gorm:"type:text;not null;index" json:"equipment_id"`
	Concessionaire string `gorm:"type:text;not null" json:"concessionaire"`
	// Irrigation grants the discounted energy rate inside the irrigante band.
	Irrigation bool `gorm:"not null;default:false" json:"irrigation"`
	// ContractedDemandKW is the kW the contract reserves. The demand charge
	// bills at least this much; measured peaks above it bill at the peak. Zero
	// means no reservation and only the measured peak is billed.
	ContractedDemandKW float64 `gorm:"not null;default:0" json:"contracted_demand_kw"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ConsumingUnit) TableName() string { return "consuming_units" }

// Service is the read-only consuming-unit lookup.
type Service interface {
	GetByCode(ctx context.Context, code string) (*ConsumingUnit, error)
}

var (
	ErrInvalidUnit  = errors.New("invalid_unit")
	ErrUnitNotFound = errors.New("unit_not_found")
)
