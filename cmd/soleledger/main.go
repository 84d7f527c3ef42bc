package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/soleworks/soleledger/internal/clock"
	"github.com/soleworks/soleledger/internal/config"
	"github.com/soleworks/soleledger/internal/logger"
	"github.com/soleworks/soleledger/internal/migration"
	"github.com/soleworks/soleledger/internal/observability"
	"github.com/soleworks/soleledger/internal/server"
	"github.com/soleworks/soleledger/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain modules come in through the server module.
		server.Module,
		migration.Module,
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
