package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

var ErrNotFound = errors.New("order_not_found")

type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Order is the durable record of one reconciled sale. Immutable after
// creation except for the payout confirmation fields.
type Order struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	InventoryItemID snowflake.ID      `json:"inventory_item_id" gorm:"not null;uniqueIndex:ux_orders_inventory_item"`
	PlatformID      snowflake.ID      `json:"platform_id" gorm:"not null;uniqueIndex:ux_orders_platform_external,priority:1"`
	ExternalID      string            `json:"external_id" gorm:"type:text;not null;uniqueIndex:ux_orders_platform_external,priority:2"`
	Status          Status            `json:"status" gorm:"type:text;not null"`
	Currency        string            `json:"currency" gorm:"type:text;not null"`
	SoldAt          time.Time         `json:"sold_at" gorm:"not null;index"`
	GrossSale       decimal.Decimal   `json:"gross_sale" gorm:"type:numeric(10,2);not null"`
	PlatformFee     decimal.Decimal   `json:"platform_fee" gorm:"type:numeric(10,2);not null"`
	NetProceeds     decimal.Decimal   `json:"net_proceeds" gorm:"type:numeric(10,2);not null"`
	GrossProfit     decimal.Decimal   `json:"gross_profit" gorm:"type:numeric(10,2);not null"`
	NetProfit       decimal.Decimal   `json:"net_profit" gorm:"type:numeric(10,2);not null"`
	ROIPercent      *decimal.Decimal  `json:"roi_percent,omitempty" gorm:"column:roi_percent;type:numeric(7,2)"`
	ShelfLifeDays   *int              `json:"shelf_life_days,omitempty"`
	PayoutReceived  bool              `json:"payout_received" gorm:"not null;default:false"`
	PayoutDate      *time.Time        `json:"payout_date,omitempty"`
	RawData         datatypes.JSONMap `json:"raw_data,omitempty" gorm:"type:jsonb"`
	CreatedAt       time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Order) TableName() string { return "orders" }
