package migration

import (
	"github.com/bwmarrin/snowflake"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	"github.com/kahera/kahera/internal/config"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	saledomain "github.com/kahera/kahera/internal/sale/domain"
	"github.com/kahera/kahera/internal/seed"
	timelogdomain "github.com/kahera/kahera/internal/timelog/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// mysql and sqlite fall back to gorm's schema sync.
			if err := conn.AutoMigrate(
				&authdomain.User{},
				&authdomain.Session{},
				&timelogdomain.TimeLog{},
				&catalogdomain.Category{},
				&catalogdomain.Product{},
				&saledomain.Sale{},
				&saledomain.SaleItem{},
				&ledgerdomain.InventoryLog{},
				&ledgerdomain.SalesLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdminUser(conn, cfg, genID)
	}),
)
