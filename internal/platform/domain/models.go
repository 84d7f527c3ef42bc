package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/fees"
)

var (
	ErrUnknownPlatform = errors.New("unknown_platform")
	ErrNoFeeSchedule   = errors.New("no_fee_schedule")
)

// Platform is a sales marketplace (StockX, eBay, GOAT, Alias).
type Platform struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:text;not null"`
	Slug      string       `json:"slug" gorm:"type:text;not null;uniqueIndex:ux_platforms_slug"`
	Currency  string       `json:"currency" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Platform) TableName() string { return "platforms" }

// FeeSchedule is the active seller fee model for one platform.
// Read-only to the reconciliation path; maintained by configuration.
type FeeSchedule struct {
	ID                 snowflake.ID    `json:"id" gorm:"primaryKey"`
	PlatformID         snowflake.ID    `json:"platform_id" gorm:"not null;uniqueIndex:ux_fee_schedules_platform"`
	PercentageFee      decimal.Decimal `json:"percentage_fee" gorm:"type:numeric(6,4);not null"`
	FixedProcessingFee decimal.Decimal `json:"fixed_processing_fee" gorm:"type:numeric(10,2);not null"`
	Currency           string          `json:"currency" gorm:"type:text;not null"`
	UpdatedAt          time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FeeSchedule) TableName() string { return "platform_fee_schedules" }

// FeeInputs converts the stored schedule into the fee calculator's shape.
func (s FeeSchedule) FeeInputs() fees.Schedule {
	return fees.Schedule{
		PercentageFee:      s.PercentageFee,
		FixedProcessingFee: s.FixedProcessingFee,
		Currency:           s.Currency,
	}
}
