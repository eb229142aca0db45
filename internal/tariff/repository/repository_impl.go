package repository

import (
	"context"
	"errors"

	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	"gorm.io/gorm"
)

type repo struct{}

func New() tariffdomain.Repository {
	return &repo{}
}

func (r *repo) FindByConcessionaire(ctx context.Context, db *gorm.DB, concessionaire string) (*tariffdomain.Schedule, error) {
	var sched tariffdomain.Schedule
	err := db.WithContext(ctx).
		Preload("Windows", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Rates").
		Where("concessionaire = ?", concessionaire).
		First(&sched).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tariffdomain.ErrTariffNotFound
		}
		return nil, err
	}
	return &sched, nil
}
