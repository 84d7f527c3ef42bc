package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status string
	SKU    string
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, item *InventoryItem) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*InventoryItem, error)

	// ResolveInStock returns every in-stock item matching the exact
	// SKU + size key. Callers must treat len != 1 as a resolution failure.
	ResolveInStock(ctx context.Context, db *gorm.DB, sku, sizeValue, sizeRegion string) ([]InventoryItem, error)

	// MarkSold transitions in_stock -> sold, conditioned on the row still
	// being in_stock. Returns the number of rows updated; zero means a
	// lost race.
	MarkSold(ctx context.Context, db *gorm.DB, id snowflake.ID, roi *decimal.Decimal, shelfLife *int, now time.Time) (int64, error)

	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]InventoryItem, error)

	// FindByExternalRef looks an item up by one key of its external id
	// map, e.g. ("notion_page_id", "abc123"). Nil when no item carries
	// that reference.
	FindByExternalRef(ctx context.Context, db *gorm.DB, key, value string) (*InventoryItem, error)
}
