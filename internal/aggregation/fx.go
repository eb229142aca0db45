package aggregation

import (
	"github.com/smallbiznis/voltgrid/internal/aggregation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("aggregation.service",
	fx.Provide(service.NewService),
)
