package migration

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/soleworks/soleledger/internal/catalog/domain"
	"github.com/soleworks/soleledger/internal/config"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	"github.com/soleworks/soleledger/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, log *zap.Logger, holder *config.MarketplaceConfigHolder, platforms platformdomain.Repository, genID *snowflake.Node) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Dev and test databases (sqlite, mysql) take the schema
			// straight from the models.
			if err := conn.AutoMigrate(
				&catalogdomain.Brand{},
				&catalogdomain.Category{},
				&catalogdomain.Product{},
				&catalogdomain.Size{},
				&catalogdomain.Supplier{},
				&platformdomain.Platform{},
				&platformdomain.FeeSchedule{},
				&inventorydomain.InventoryItem{},
				&orderdomain.Order{},
			); err != nil {
				return err
			}
		}

		if err := seed.EnsurePlatforms(conn, genID, platforms, holder.Get()); err != nil {
			return err
		}

		// Fee schedules are read from the database at reconcile time, so a
		// hot-reloaded marketplace config has to be written back there too.
		seedLog := log.Named("seed")
		holder.OnChange(func(updated config.MarketplaceConfig) {
			if err := seed.EnsurePlatforms(conn, genID, platforms, updated); err != nil {
				seedLog.Error("re-seeding platforms after config reload failed", zap.Error(err))
				return
			}
			seedLog.Info("platform fee schedules re-seeded after config reload")
		})
		return nil
	}),
)
