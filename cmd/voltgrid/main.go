package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltgrid/internal/clock"
	"github.com/smallbiznis/voltgrid/internal/logger"
	"github.com/smallbiznis/voltgrid/internal/migration"
	"github.com/smallbiznis/voltgrid/internal/server"
	"github.com/smallbiznis/voltgrid/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(RegisterSnowflake),
		logger.Module,
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
