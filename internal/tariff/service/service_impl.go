package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/voltgrid/internal/cache"
	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// scheduleTTL bounds staleness after an out-of-band tariff update.
const scheduleTTL = 5 * time.Minute

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo tariffdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	repo  tariffdomain.Repository
	cache cache.Cache[string, *tariffdomain.Schedule]
}

func NewService(p ServiceParam) tariffdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("tariff.service"),
		repo:  p.Repo,
		cache: cache.NewTTLCache[string, *tariffdomain.Schedule](),
	}
}

func (s *Service) GetByConcessionaire(ctx context.Context, concessionaire string) (*tariffdomain.Schedule, error) {
	concessionaire = strings.TrimSpace(concessionaire)
	if concessionaire == "" {
		return nil, tariffdomain.ErrInvalidConcessionaire
	}

	if sched, ok := s.cache.Get(concessionaire); ok {
		return sched, nil
	}

	sched, err := s.repo.FindByConcessionaire(ctx, s.db, concessionaire)
	if err != nil {
		return nil, err
	}

	if sched.Timezone != "" && sched.Location() == nil {
		s.log.Warn("unknown tariff timezone, classifying timestamps as given",
			zap.String("concessionaire", concessionaire),
			zap.String("timezone", sched.Timezone),
		)
	}

	s.cache.Set(concessionaire, sched, scheduleTTL)
	return sched, nil
}
