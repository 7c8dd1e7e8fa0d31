package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/kahera/kahera/internal/auth"
	"github.com/kahera/kahera/internal/catalog"
	"github.com/kahera/kahera/internal/config"
	"github.com/kahera/kahera/internal/dashboard"
	"github.com/kahera/kahera/internal/ledger"
	"github.com/kahera/kahera/internal/logger"
	"github.com/kahera/kahera/internal/metrics"
	"github.com/kahera/kahera/internal/migration"
	"github.com/kahera/kahera/internal/sale"
	"github.com/kahera/kahera/internal/server"
	"github.com/kahera/kahera/internal/timelog"
	"github.com/kahera/kahera/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		metrics.Module,
		migration.Module,

		// Functional domains
		auth.Module,
		timelog.Module,
		catalog.Module,
		ledger.Module,
		sale.Module,
		dashboard.Module,

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
