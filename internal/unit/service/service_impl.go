package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/voltgrid/internal/cache"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"github.com/smallbiznis/voltgrid/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const unitTTL = 5 * time.Minute

type ServiceParam struct {
	fx.In

	Log   *zap.Logger
	Units repository.Repository[unitdomain.ConsumingUnit]
}

type Service struct {
	log   *zap.Logger
	units repository.Repository[unitdomain.ConsumingUnit]
	cache cache.Cache[string, *unitdomain.ConsumingUnit]
}

func NewService(p ServiceParam) unitdomain.Service {
	return &Service{
		log:   p.Log.Named("unit.service"),
		units: p.Units,
		cache: cache.NewTTLCache[string, *unitdomain.ConsumingUnit](),
	}
}

func (s *Service) GetByCode(ctx context.Context, code string) (*unitdomain.ConsumingUnit, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, unitdomain.ErrInvalidUnit
	}

	if unit, ok := s.cache.Get(code); ok {
		return unit, nil
	}

	unit, err := s.units.FindOne(ctx, &unitdomain.ConsumingUnit{Code: code})
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, unitdomain.ErrUnitNotFound
	}

	s.cache.Set(code, unit, unitTTL)
	return unit, nil
}
