package tariff

import (
	"github.com/smallbiznis/voltgrid/internal/tariff/repository"
	"github.com/smallbiznis/voltgrid/internal/tariff/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tariff.service",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
