package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusInStock  Status = "in_stock"
	StatusListed   Status = "listed"
	StatusSold     Status = "sold"
	StatusReturned Status = "returned"
)

var (
	ErrItemNotFound      = errors.New("item_not_found")
	ErrAmbiguousItem     = errors.New("ambiguous_item")
	ErrInvalidPurchase   = errors.New("invalid_purchase")
	ErrPurchaseInvariant = errors.New("purchase_price_invariant")
)

// InventoryItem is one physical unit held for resale.
// gross_purchase_price = net_purchase_price + vat_amount (within a cent).
type InventoryItem struct {
	ID                 snowflake.ID      `json:"id" gorm:"primaryKey"`
	ProductID          snowflake.ID      `json:"product_id" gorm:"not null;index"`
	SizeID             snowflake.ID      `json:"size_id" gorm:"not null;index"`
	SupplierID         *snowflake.ID     `json:"supplier_id,omitempty" gorm:"index"`
	Quantity           int               `json:"quantity" gorm:"not null;default:1"`
	NetPurchasePrice   decimal.Decimal   `json:"net_purchase_price" gorm:"type:numeric(10,2);not null"`
	GrossPurchasePrice decimal.Decimal   `json:"gross_purchase_price" gorm:"type:numeric(10,2);not null"`
	VATAmount          decimal.Decimal   `json:"vat_amount" gorm:"type:numeric(10,2);not null"`
	VATRate            decimal.Decimal   `json:"vat_rate" gorm:"type:numeric(5,2);not null"`
	PurchaseDate       *time.Time        `json:"purchase_date,omitempty"`
	DeliveryDate       *time.Time        `json:"delivery_date,omitempty"`
	Status             Status            `json:"status" gorm:"type:text;not null;default:in_stock;index"`
	ROIPercent         *decimal.Decimal  `json:"roi_percent,omitempty" gorm:"column:roi_percent;type:numeric(7,2)"`
	ShelfLifeDays      *int              `json:"shelf_life_days,omitempty"`
	ExternalIDs        datatypes.JSONMap `json:"external_ids,omitempty" gorm:"type:jsonb"`
	CreatedAt          time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InventoryItem) TableName() string { return "inventory_items" }
