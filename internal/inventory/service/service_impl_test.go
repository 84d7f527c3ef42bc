package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/soleworks/soleledger/internal/catalog/domain"
	catalogrepo "github.com/soleworks/soleledger/internal/catalog/repository"
	"github.com/soleworks/soleledger/internal/inventory/domain"
	inventoryrepo "github.com/soleworks/soleledger/internal/inventory/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setup(t *testing.T) (domain.Service, *gorm.DB) {
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
		&domain.InventoryItem{},
	))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	svc := NewService(Params{
		DB:      db,
		Log:     zap.NewNop(),
		GenID:   node,
		Catalog: catalogrepo.Provide(node),
		Repo:    inventoryrepo.Provide(),
	})
	return svc, db
}

func validRequest() domain.IngestPurchaseRequest {
	purchase := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	return domain.IngestPurchaseRequest{
		SKU:                "DD1391-100",
		ProductName:        "Dunk Low Panda",
		Brand:              "Nike",
		Category:           "Sneakers",
		SizeValue:          "42",
		SizeRegion:         "eu",
		Supplier:           "Footlocker",
		GrossPurchasePrice: decimal.RequireFromString("100.00"),
		NetPurchasePrice:   decimal.RequireFromString("84.03"),
		VATAmount:          decimal.RequireFromString("15.97"),
		VATRate:            decimal.NewFromInt(19),
		PurchaseDate:       &purchase,
		ExternalIDs:        map[string]any{"notion_page_id": "page-1"},
	}
}

func TestIngestPurchaseCreatesCatalogGraph(t *testing.T) {
	svc, db := setup(t)

	item, err := svc.IngestPurchase(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, domain.StatusInStock, item.Status)
	assert.Equal(t, "100", item.GrossPurchasePrice.String())
	assert.Equal(t, "84.03", item.NetPurchasePrice.String())
	assert.Equal(t, "15.97", item.VATAmount.String())
	require.NotNil(t, item.SupplierID)

	var product catalogdomain.Product
	require.NoError(t, db.First(&product, "sku = ?", "DD1391-100").Error)
	assert.Equal(t, "Dunk Low Panda", product.Name)

	var size catalogdomain.Size
	require.NoError(t, db.First(&size, "id = ?", item.SizeID).Error)
	assert.Equal(t, "42", size.Value)
	assert.Equal(t, "EU", size.Region)

	var brand catalogdomain.Brand
	require.NoError(t, db.First(&brand, "slug = ?", "nike").Error)
	assert.Equal(t, brand.ID, product.BrandID)
}

func TestIngestPurchaseReusesCatalogRows(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	first, err := svc.IngestPurchase(ctx, validRequest())
	require.NoError(t, err)
	second, err := svc.IngestPurchase(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, first.ProductID, second.ProductID)
	assert.Equal(t, first.SizeID, second.SizeID)
	assert.Equal(t, *first.SupplierID, *second.SupplierID)

	var brands int64
	require.NoError(t, db.Model(&catalogdomain.Brand{}).Count(&brands).Error)
	assert.EqualValues(t, 1, brands)

	var items int64
	require.NoError(t, db.Model(&domain.InventoryItem{}).Count(&items).Error)
	assert.EqualValues(t, 2, items)
}

func TestIngestPurchaseDerivesNetFromGross(t *testing.T) {
	svc, _ := setup(t)

	req := validRequest()
	req.NetPurchasePrice = decimal.Zero
	req.VATAmount = decimal.Zero
	req.VATRate = decimal.Zero

	item, err := svc.IngestPurchase(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, item.NetPurchasePrice.Equal(item.GrossPurchasePrice))
	assert.True(t, item.VATAmount.IsZero())
}

func TestIngestPurchaseRejectsBrokenPriceInvariant(t *testing.T) {
	svc, _ := setup(t)

	req := validRequest()
	req.VATAmount = decimal.RequireFromString("20.00") // net + vat != gross

	_, err := svc.IngestPurchase(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrPurchaseInvariant)
}

func TestIngestPurchaseValidation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*domain.IngestPurchaseRequest)
	}{
		{"missing sku", func(r *domain.IngestPurchaseRequest) { r.SKU = " " }},
		{"missing supplier", func(r *domain.IngestPurchaseRequest) { r.Supplier = "" }},
		{"zero gross", func(r *domain.IngestPurchaseRequest) {
			r.GrossPurchasePrice = decimal.Zero
			r.NetPurchasePrice = decimal.Zero
			r.VATAmount = decimal.Zero
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			_, err := svc.IngestPurchase(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidPurchase)
		})
	}
}
