package migration

import (
	"github.com/smallbiznis/voltgrid/internal/config"
	tariffdomain "github.com/smallbiznis/voltgrid/internal/tariff/domain"
	telemetrydomain "github.com/smallbiznis/voltgrid/internal/telemetry/domain"
	unitdomain "github.com/smallbiznis/voltgrid/internal/unit/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations target postgres. Other drivers (sqlite in local
		// setups) fall back to schema sync from the models.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&telemetrydomain.Reading{},
				&tariffdomain.Schedule{},
				&tariffdomain.Window{},
				&tariffdomain.Rate{},
				&unitdomain.ConsumingUnit{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
