package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/soleworks/soleledger/internal/catalog/domain"
	"github.com/soleworks/soleledger/internal/clock"
	"github.com/soleworks/soleledger/internal/config"
	inventorydomain "github.com/soleworks/soleledger/internal/inventory/domain"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Brand{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&catalogdomain.Size{},
		&catalogdomain.Supplier{},
		&inventorydomain.InventoryItem{},
		&orderdomain.Order{},
	))

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	holder := config.NewStaticMarketplaceConfigHolder(config.DefaultMarketplaceConfig())

	svc := NewService(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Clock:  clock.NewFakeClock(now),
		Holder: holder,
	})
	return svc, db, node
}

type soldUnit struct {
	brand     string
	gross     string
	salePrice string
	netProfit string
	soldAt    time.Time
}

func seedSoldUnit(t *testing.T, db *gorm.DB, node *snowflake.Node, u soldUnit) {
	t.Helper()

	// IDs live in Attrs so repeated seeding reuses the catalog rows.
	var brand catalogdomain.Brand
	require.NoError(t, db.Where("slug = ?", "slug-"+u.brand).
		Attrs(catalogdomain.Brand{ID: node.Generate(), Name: u.brand, Slug: "slug-" + u.brand}).
		FirstOrCreate(&brand).Error)
	var category catalogdomain.Category
	require.NoError(t, db.Where("slug = ?", "sneakers").
		Attrs(catalogdomain.Category{ID: node.Generate(), Name: "Sneakers", Slug: "sneakers"}).
		FirstOrCreate(&category).Error)
	product := catalogdomain.Product{
		ID: node.Generate(), SKU: node.Generate().String(), Name: u.brand + " model",
		BrandID: brand.ID, CategoryID: category.ID,
	}
	require.NoError(t, db.Create(&product).Error)
	var size catalogdomain.Size
	require.NoError(t, db.Where("value = ? AND region = ? AND category_id = ?",
		"42", "EU", category.ID).
		Attrs(catalogdomain.Size{ID: node.Generate(), Value: "42", Region: "EU", CategoryID: category.ID}).
		FirstOrCreate(&size).Error)

	item := inventorydomain.InventoryItem{
		ID:        node.Generate(),
		ProductID: product.ID,
		SizeID:    size.ID,
		Quantity:  1,
		NetPurchasePrice:   decimal.RequireFromString(u.gross),
		GrossPurchasePrice: decimal.RequireFromString(u.gross),
		VATAmount:          decimal.Zero,
		VATRate:            decimal.Zero,
		Status:             inventorydomain.StatusSold,
	}
	require.NoError(t, db.Create(&item).Error)

	order := orderdomain.Order{
		ID:              node.Generate(),
		InventoryItemID: item.ID,
		PlatformID:      node.Generate(),
		ExternalID:      node.Generate().String(),
		Status:          orderdomain.StatusCompleted,
		Currency:        "EUR",
		SoldAt:          u.soldAt,
		GrossSale:       decimal.RequireFromString(u.salePrice),
		PlatformFee:     decimal.RequireFromString("10.00"),
		NetProceeds:     decimal.RequireFromString(u.salePrice).Sub(decimal.RequireFromString("10.00")),
		GrossProfit:     decimal.RequireFromString(u.netProfit),
		NetProfit:       decimal.RequireFromString(u.netProfit),
	}
	require.NoError(t, db.Create(&order).Error)
}

func seedInStock(t *testing.T, db *gorm.DB, node *snowflake.Node, gross string, purchasedDaysAgo int) {
	t.Helper()

	purchase := now.AddDate(0, 0, -purchasedDaysAgo)
	item := inventorydomain.InventoryItem{
		ID:        node.Generate(),
		ProductID: node.Generate(),
		SizeID:    node.Generate(),
		Quantity:  1,
		NetPurchasePrice:   decimal.RequireFromString(gross),
		GrossPurchasePrice: decimal.RequireFromString(gross),
		VATAmount:          decimal.Zero,
		VATRate:            decimal.Zero,
		PurchaseDate:       &purchase,
		Status:             inventorydomain.StatusInStock,
	}
	require.NoError(t, db.Create(&item).Error)
}

func TestBrandProfit(t *testing.T) {
	svc, db, node := setup(t)

	seedSoldUnit(t, db, node, soldUnit{brand: "Nike", gross: "50", salePrice: "100", netProfit: "39", soldAt: now})
	seedSoldUnit(t, db, node, soldUnit{brand: "Nike", gross: "60", salePrice: "120", netProfit: "48", soldAt: now})
	seedSoldUnit(t, db, node, soldUnit{brand: "Adidas", gross: "70", salePrice: "90", netProfit: "8", soldAt: now})

	rows, err := svc.BrandProfit(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Nike", rows[0].Brand)
	assert.Equal(t, 2, rows[0].UnitsSold)
	assert.Equal(t, "220", rows[0].Revenue.String())
	assert.Equal(t, "87", rows[0].NetProfit.String())
	assert.Equal(t, "Adidas", rows[1].Brand)
}

func TestMonthlyPnL(t *testing.T) {
	svc, db, node := setup(t)

	march := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	april := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)
	seedSoldUnit(t, db, node, soldUnit{brand: "Nike", gross: "50", salePrice: "100", netProfit: "39", soldAt: march})
	seedSoldUnit(t, db, node, soldUnit{brand: "Nike", gross: "50", salePrice: "110", netProfit: "45", soldAt: april})

	rows, err := svc.MonthlyPnL(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2025-03", rows[0].Month)
	assert.Equal(t, "100", rows[0].Revenue.String())
	assert.Equal(t, "2025-04", rows[1].Month)
}

func TestInventoryAging(t *testing.T) {
	svc, db, node := setup(t)

	seedInStock(t, db, node, "50.00", 5)
	seedInStock(t, db, node, "60.00", 45)
	seedInStock(t, db, node, "70.00", 200)
	seedInStock(t, db, node, "80.00", 210)

	rows, err := svc.InventoryAging(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "0-30", rows[0].Bucket)
	assert.Equal(t, 1, rows[0].Units)
	assert.Equal(t, "50", rows[0].CapitalTied.String())

	assert.Equal(t, "31-90", rows[1].Bucket)
	assert.Equal(t, 1, rows[1].Units)

	assert.Equal(t, "90+", rows[2].Bucket)
	assert.Equal(t, 2, rows[2].Units)
	assert.Equal(t, "150", rows[2].CapitalTied.String())
}
