// Package seed bootstraps reference data so a fresh install can
// reconcile sales immediately.
package seed

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/config"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	"gorm.io/gorm"
)

// EnsurePlatforms upserts one platform and fee schedule per configured
// marketplace. Existing schedules are overwritten so config stays the
// source of truth for fees.
func EnsurePlatforms(db *gorm.DB, genID *snowflake.Node, repo platformdomain.Repository, cfg config.MarketplaceConfig) error {
	ctx := context.Background()
	now := time.Now().UTC()

	for _, fs := range cfg.FeeSchedules {
		platform := &platformdomain.Platform{
			ID:       genID.Generate(),
			Name:     fs.Platform,
			Slug:     slug.Make(fs.Platform),
			Currency: fs.Currency,
		}
		schedule := &platformdomain.FeeSchedule{
			ID:                 genID.Generate(),
			PercentageFee:      decimal.NewFromFloat(fs.PercentageFee),
			FixedProcessingFee: decimal.NewFromFloat(fs.FixedProcessingFee),
			Currency:           fs.Currency,
			UpdatedAt:          now,
		}
		if err := repo.Upsert(ctx, db, platform, schedule); err != nil {
			return err
		}
	}
	return nil
}
