package unit

import (
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"github.com/smallbiznis/voltgrid/internal/unit/service"
	"github.com/smallbiznis/voltgrid/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("unit.service",
	fx.Provide(
		repository.ProvideStore[unitdomain.ConsumingUnit],
		service.NewService,
	),
)
