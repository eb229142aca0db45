package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository loads schedules with their windows and rates attached.
type Repository interface {
	FindByConcessionaire(ctx context.Context, db *gorm.DB, concessionaire string) (*Schedule, error)
}
