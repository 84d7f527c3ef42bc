package seed

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/soleworks/soleledger/internal/config"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	platformrepo "github.com/soleworks/soleledger/internal/platform/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setup(t *testing.T) (*gorm.DB, *snowflake.Node, platformdomain.Repository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&platformdomain.Platform{}, &platformdomain.FeeSchedule{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)
	return db, node, platformrepo.Provide()
}

func TestEnsurePlatformsIsIdempotent(t *testing.T) {
	db, node, repo := setup(t)
	cfg := config.DefaultMarketplaceConfig()

	require.NoError(t, EnsurePlatforms(db, node, repo, cfg))
	require.NoError(t, EnsurePlatforms(db, node, repo, cfg))

	var count int64
	require.NoError(t, db.Model(&platformdomain.Platform{}).Count(&count).Error)
	assert.EqualValues(t, len(cfg.FeeSchedules), count)
}

// Re-seeding with changed fees must overwrite the stored schedule, since
// reconciliation reads fees from the database, not from the config holder.
func TestEnsurePlatformsAppliesUpdatedFees(t *testing.T) {
	db, node, repo := setup(t)
	ctx := context.Background()

	cfg := config.DefaultMarketplaceConfig()
	require.NoError(t, EnsurePlatforms(db, node, repo, cfg))

	cfg.FeeSchedules[0].PercentageFee = 0.12
	cfg.FeeSchedules[0].FixedProcessingFee = 2.25
	require.NoError(t, EnsurePlatforms(db, node, repo, cfg))

	platform, err := repo.FindByName(ctx, db, cfg.FeeSchedules[0].Platform)
	require.NoError(t, err)
	require.NotNil(t, platform)

	schedule, err := repo.ActiveSchedule(ctx, db, platform.ID)
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, "0.12", schedule.PercentageFee.String())
	assert.Equal(t, "2.25", schedule.FixedProcessingFee.String())

	var schedules int64
	require.NoError(t, db.Model(&platformdomain.FeeSchedule{}).
		Where("platform_id = ?", platform.ID).Count(&schedules).Error)
	assert.EqualValues(t, 1, schedules)
}
