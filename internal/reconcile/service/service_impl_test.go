package service

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
	inventoryrepo "github.com/soleworks/soleledger/internal/inventory/repository"
	"github.com/soleworks/soleledger/internal/observability/metrics"
	orderdomain "github.com/soleworks/soleledger/internal/order/domain"
	orderrepo "github.com/soleworks/soleledger/internal/order/repository"
	platformdomain "github.com/soleworks/soleledger/internal/platform/domain"
	platformrepo "github.com/soleworks/soleledger/internal/platform/repository"
	"github.com/soleworks/soleledger/internal/reconcile/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var soldAt = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)

type fixture struct {
	db       *gorm.DB
	svc      *Service
	node     *snowflake.Node
	platform platformdomain.Platform
	item     inventorydomain.InventoryItem
}

func setup(t *testing.T, cfg config.Config) *fixture {
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
		&platformdomain.Platform{},
		&platformdomain.FeeSchedule{},
		&orderdomain.Order{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	f := &fixture{db: db, node: node}

	f.platform = platformdomain.Platform{
		ID:       node.Generate(),
		Name:     "StockX",
		Slug:     "stockx",
		Currency: "EUR",
	}
	require.NoError(t, db.Create(&f.platform).Error)
	require.NoError(t, db.Create(&platformdomain.FeeSchedule{
		ID:                 node.Generate(),
		PlatformID:         f.platform.ID,
		PercentageFee:      decimal.RequireFromString("0.095"),
		FixedProcessingFee: decimal.RequireFromString("1.50"),
		Currency:           "EUR",
	}).Error)

	f.item = f.addItem(t, "DD1391-100", "42", "EU", "50.00", daysAgo(soldAt, 10))

	svc := NewService(Params{
		DB:        db,
		Log:       zap.NewNop(),
		Cfg:       cfg,
		Clock:     clock.NewFakeClock(soldAt),
		GenID:     node,
		Metrics:   metrics.New(),
		Orders:    orderrepo.Provide(),
		Items:     inventoryrepo.Provide(),
		Platforms: platformrepo.Provide(),
	})
	f.svc = svc.(*Service)
	return f
}

func (f *fixture) addItem(t *testing.T, sku, sizeValue, sizeRegion, gross string, purchased *time.Time) inventorydomain.InventoryItem {
	t.Helper()

	// IDs live in Attrs so a second call with the same slug/sku finds the
	// existing row instead of inserting a conflicting duplicate.
	var brand catalogdomain.Brand
	require.NoError(t, f.db.Where("slug = ?", "nike").
		Attrs(catalogdomain.Brand{ID: f.node.Generate(), Name: "Nike", Slug: "nike"}).
		FirstOrCreate(&brand).Error)

	var category catalogdomain.Category
	require.NoError(t, f.db.Where("slug = ?", "sneakers").
		Attrs(catalogdomain.Category{ID: f.node.Generate(), Name: "Sneakers", Slug: "sneakers"}).
		FirstOrCreate(&category).Error)

	var product catalogdomain.Product
	require.NoError(t, f.db.Where("sku = ?", sku).
		Attrs(catalogdomain.Product{
			ID: f.node.Generate(), SKU: sku, Name: "Panda " + sku,
			BrandID: brand.ID, CategoryID: category.ID,
		}).
		FirstOrCreate(&product).Error)

	var size catalogdomain.Size
	require.NoError(t, f.db.Where("value = ? AND region = ? AND category_id = ?",
		sizeValue, sizeRegion, category.ID).
		Attrs(catalogdomain.Size{
			ID: f.node.Generate(), Value: sizeValue, Region: sizeRegion, CategoryID: category.ID,
		}).
		FirstOrCreate(&size).Error)

	grossPrice := decimal.RequireFromString(gross)
	item := inventorydomain.InventoryItem{
		ID:                 f.node.Generate(),
		ProductID:          product.ID,
		SizeID:             size.ID,
		Quantity:           1,
		NetPurchasePrice:   grossPrice,
		GrossPurchasePrice: grossPrice,
		VATAmount:          decimal.Zero,
		VATRate:            decimal.Zero,
		PurchaseDate:       purchased,
		Status:             inventorydomain.StatusInStock,
	}
	require.NoError(t, f.db.Create(&item).Error)
	return item
}

func daysAgo(from time.Time, days int) *time.Time {
	t := from.AddDate(0, 0, -days)
	return &t
}

func candidate(f *fixture) domain.SaleCandidate {
	return domain.SaleCandidate{
		ExternalSaleID: "SX-123",
		PlatformName:   "StockX",
		SalePrice:      decimal.RequireFromString("100.00"),
		SoldAt:         soldAt,
		SKU:            "DD1391-100",
		SizeValue:      "42",
		SizeRegion:     "EU",
		RawData:        map[string]any{"source": "stockx_export"},
	}
}

func TestReconcileCreatesOrder(t *testing.T) {
	f := setup(t, config.Config{})

	out, err := f.svc.Reconcile(context.Background(), candidate(f))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCreated, out.Kind)
	require.NotNil(t, out.Order)

	assert.Equal(t, f.item.ID, out.Order.InventoryItemID)
	assert.Equal(t, "100", out.Order.GrossSale.String())
	assert.Equal(t, "11", out.Order.PlatformFee.String())
	assert.Equal(t, "89", out.Order.NetProceeds.String())
	assert.Equal(t, "50", out.Order.GrossProfit.String())
	assert.Equal(t, "39", out.Order.NetProfit.String())
	require.NotNil(t, out.Order.ROIPercent)
	assert.Equal(t, "78", out.Order.ROIPercent.String())
	require.NotNil(t, out.Order.ShelfLifeDays)
	assert.Equal(t, 10, *out.Order.ShelfLifeDays)
	assert.Equal(t, "EUR", out.Order.Currency)

	var stored orderdomain.Order
	require.NoError(t, f.db.First(&stored, "id = ?", out.Order.ID).Error)
	assert.Equal(t, "SX-123", stored.ExternalID)
	assert.False(t, stored.PayoutReceived)
	require.NotNil(t, stored.ROIPercent)
	assert.Equal(t, "78", stored.ROIPercent.String())

	// Raw SQL and the model must agree on the roi_percent column name;
	// the insert goes through raw SQL while the read above goes through gorm.
	var rawROI string
	require.NoError(t, f.db.Raw("SELECT roi_percent FROM orders WHERE id = ?", out.Order.ID).Scan(&rawROI).Error)
	assert.Equal(t, "78", rawROI)

	var item inventorydomain.InventoryItem
	require.NoError(t, f.db.First(&item, "id = ?", f.item.ID).Error)
	assert.Equal(t, inventorydomain.StatusSold, item.Status)
	require.NotNil(t, item.ROIPercent)
	assert.Equal(t, "78", item.ROIPercent.String())
	require.NotNil(t, item.ShelfLifeDays)
	assert.Equal(t, 10, *item.ShelfLifeDays)
}

func TestReconcileIsIdempotent(t *testing.T) {
	f := setup(t, config.Config{})
	ctx := context.Background()

	first, err := f.svc.Reconcile(ctx, candidate(f))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCreated, first.Kind)

	second, err := f.svc.Reconcile(ctx, candidate(f))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSkippedDuplicate, second.Kind)
	require.NotNil(t, second.Order)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	var count int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReconcileValidation(t *testing.T) {
	f := setup(t, config.Config{})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.SaleCandidate)
		reason string
	}{
		{"missing external id", func(c *domain.SaleCandidate) { c.ExternalSaleID = "  " }, domain.ReasonMissingExternalSaleID},
		{"missing platform", func(c *domain.SaleCandidate) { c.PlatformName = "" }, domain.ReasonMissingPlatformName},
		{"zero price", func(c *domain.SaleCandidate) { c.SalePrice = decimal.Zero }, domain.ReasonInvalidSalePrice},
		{"negative price", func(c *domain.SaleCandidate) { c.SalePrice = decimal.RequireFromString("-5") }, domain.ReasonInvalidSalePrice},
		{"no item reference", func(c *domain.SaleCandidate) { c.SKU = ""; c.InventoryItemID = 0 }, domain.ReasonMissingItemReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := candidate(f)
			tt.mutate(&c)
			out, err := f.svc.Reconcile(ctx, c)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
			assert.Equal(t, tt.reason, out.Reason)
		})
	}

	var count int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestReconcileUnknownPlatform(t *testing.T) {
	f := setup(t, config.Config{})

	c := candidate(f)
	c.PlatformName = "Grailed"
	out, err := f.svc.Reconcile(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
	assert.Equal(t, domain.ReasonUnknownPlatform, out.Reason)
}

func TestReconcileItemNotFound(t *testing.T) {
	f := setup(t, config.Config{})

	c := candidate(f)
	c.SizeValue = "45"
	out, err := f.svc.Reconcile(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
	assert.Equal(t, domain.ReasonItemNotFound, out.Reason)
}

func TestReconcileAmbiguousItem(t *testing.T) {
	f := setup(t, config.Config{})
	f.addItem(t, "DD1391-100", "42", "EU", "55.00", nil)

	out, err := f.svc.Reconcile(context.Background(), candidate(f))
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
	assert.Equal(t, domain.ReasonAmbiguousItem, out.Reason)

	// Nothing was sold.
	var count int64
	require.NoError(t, f.db.Model(&inventorydomain.InventoryItem{}).
		Where("status = ?", inventorydomain.StatusInStock).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestReconcileByDirectItemID(t *testing.T) {
	f := setup(t, config.Config{})

	c := candidate(f)
	c.SKU = ""
	c.InventoryItemID = f.item.ID
	out, err := f.svc.Reconcile(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, out.Kind)
	assert.Equal(t, f.item.ID, out.Order.InventoryItemID)
}

func TestReconcileUndefinedROI(t *testing.T) {
	t.Run("rejected by default", func(t *testing.T) {
		f := setup(t, config.Config{})
		free := f.addItem(t, "GIFT-001", "40", "EU", "0.00", nil)

		c := candidate(f)
		c.SKU = ""
		c.InventoryItemID = free.ID
		out, err := f.svc.Reconcile(context.Background(), c)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
		assert.Equal(t, domain.ReasonUndefinedROI, out.Reason)
	})

	t.Run("null roi when configured", func(t *testing.T) {
		f := setup(t, config.Config{AllowNullROI: true})
		free := f.addItem(t, "GIFT-001", "40", "EU", "0.00", nil)

		c := candidate(f)
		c.SKU = ""
		c.InventoryItemID = free.ID
		out, err := f.svc.Reconcile(context.Background(), c)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeCreated, out.Kind)
		assert.Nil(t, out.Order.ROIPercent)
		assert.Equal(t, "89", out.Order.NetProceeds.String())
		assert.Equal(t, "89", out.Order.NetProfit.String())
	})
}

// staleItems hands out an in-stock snapshot of an item that has already been
// sold underneath, forcing the conditional update inside the transaction to
// lose the race.
type staleItems struct {
	inventorydomain.Repository
	stale inventorydomain.InventoryItem
}

func (s *staleItems) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*inventorydomain.InventoryItem, error) {
	if id == s.stale.ID {
		copy := s.stale
		copy.Status = inventorydomain.StatusInStock
		return &copy, nil
	}
	return s.Repository.FindByID(ctx, db, id)
}

func TestReconcileStateConflictRollsBack(t *testing.T) {
	f := setup(t, config.Config{})
	ctx := context.Background()

	// Sell the item for real first.
	first, err := f.svc.Reconcile(ctx, candidate(f))
	require.NoError(t, err)
	require.Equal(t, domain.OutcomeCreated, first.Kind)

	f.svc.items = &staleItems{Repository: inventoryrepo.Provide(), stale: f.item}

	c := candidate(f)
	c.ExternalSaleID = "SX-456"
	c.SKU = ""
	c.InventoryItemID = f.item.ID
	out, err := f.svc.Reconcile(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeRejectedInvalid, out.Kind)
	assert.Equal(t, domain.ReasonItemStateConflict, out.Reason)

	// The rejected sale's order insert must have rolled back with it.
	var count int64
	require.NoError(t, f.db.Model(&orderdomain.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestReconcileBatchSummary(t *testing.T) {
	f := setup(t, config.Config{})
	f.addItem(t, "FZ8117-100", "43", "EU", "80.00", daysAgo(soldAt, 30))
	f.addItem(t, "HQ6316", "44", "EU", "60.00", nil)
	f.addItem(t, "HQ6316", "44", "EU", "62.00", nil)

	second := candidate(f)
	second.ExternalSaleID = "SX-200"
	second.SKU = "FZ8117-100"
	second.SizeValue = "43"
	second.SalePrice = decimal.RequireFromString("150.00")

	ambiguous := candidate(f)
	ambiguous.ExternalSaleID = "SX-300"
	ambiguous.SKU = "HQ6316"
	ambiguous.SizeValue = "44"

	invalid := candidate(f)
	invalid.ExternalSaleID = ""

	missing := candidate(f)
	missing.ExternalSaleID = "SX-400"
	missing.SKU = "NOPE-000"

	summary := f.svc.ReconcileBatch(context.Background(), []domain.SaleCandidate{
		candidate(f), // created
		candidate(f), // duplicate of the first
		second,       // created
		ambiguous,
		invalid,
		missing,
	})

	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 1, summary.SkippedDuplicate)
	assert.Equal(t, 2, summary.RejectedInvalid)
	assert.Equal(t, 1, summary.RejectedAmbiguous)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 6, summary.Total())
}

func TestResolvePreview(t *testing.T) {
	f := setup(t, config.Config{})
	f.addItem(t, "DD1391-100", "42", "EU", "55.00", nil)

	matches, err := f.svc.ResolvePreview(context.Background(), candidate(f))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}
