package telemetry

import (
	"github.com/smallbiznis/voltgrid/internal/telemetry/repository"
	"github.com/smallbiznis/voltgrid/internal/telemetry/service"
	"go.uber.org/fx"
)

var Module = fx.Module("telemetry.service",
	fx.Provide(
		repository.New,
		service.NewService,
	),
)
