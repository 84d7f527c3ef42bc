package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var ErrInvalidSKU = errors.New("invalid_sku")

type Brand struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_brands_slug"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Brand) TableName() string { return "brands" }

type Category struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_categories_slug"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         snowflake.ID `json:"id" gorm:"primaryKey"`
	SKU        string       `json:"sku" gorm:"type:text;not null;uniqueIndex:ux_products_sku"`
	Name       string       `json:"name" gorm:"type:text;not null"`
	BrandID    snowflake.ID `json:"brand_id" gorm:"not null;index"`
	CategoryID snowflake.ID `json:"category_id" gorm:"not null;index"`
	CreatedAt  time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Size is a region-qualified shoe size (value "38", region "EU").
type Size struct {
	ID                snowflake.ID     `json:"id" gorm:"primaryKey"`
	Value             string           `json:"value" gorm:"type:text;not null;uniqueIndex:ux_sizes_value_region_category,priority:1"`
	Region            string           `json:"region" gorm:"type:text;not null;uniqueIndex:ux_sizes_value_region_category,priority:2"`
	CategoryID        snowflake.ID     `json:"category_id" gorm:"not null;uniqueIndex:ux_sizes_value_region_category,priority:3"`
	StandardizedValue *decimal.Decimal `json:"standardized_value,omitempty" gorm:"type:numeric(5,2)"`
	CreatedAt         time.Time        `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Size) TableName() string { return "sizes" }

type Supplier struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Name         string       `json:"name" gorm:"type:text;not null"`
	Slug         string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_suppliers_slug"`
	SupplierType string       `json:"supplier_type" gorm:"type:text;not null;default:retail"`
	Status       string       `json:"status" gorm:"type:text;not null;default:active"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Supplier) TableName() string { return "suppliers" }
