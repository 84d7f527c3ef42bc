package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository provides idempotent get-or-create lookups for the catalog
// graph. Ingestion paths call these inside their own transactions.
type Repository interface {
	GetOrCreateBrand(ctx context.Context, db *gorm.DB, name string) (*Brand, error)
	GetOrCreateCategory(ctx context.Context, db *gorm.DB, name string) (*Category, error)
	GetOrCreateSupplier(ctx context.Context, db *gorm.DB, name string) (*Supplier, error)
	GetOrCreateProduct(ctx context.Context, db *gorm.DB, sku, name string, brandID, categoryID snowflake.ID) (*Product, error)
	GetOrCreateSize(ctx context.Context, db *gorm.DB, value, region string, categoryID snowflake.ID) (*Size, error)
	FindProductBySKU(ctx context.Context, db *gorm.DB, sku string) (*Product, error)
	FindSize(ctx context.Context, db *gorm.DB, value, region string, categoryID snowflake.ID) (*Size, error)
}
