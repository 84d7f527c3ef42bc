package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type ListFilter struct {
	PlatformID snowflake.ID
	SoldAfter  *time.Time
	SoldBefore *time.Time
	Cursor     snowflake.ID
	Limit      int
}

type Repository interface {
	// Insert writes the order with ON CONFLICT DO NOTHING on the
	// (platform_id, external_id) key and reports whether a row was
	// actually created. The unique index is the authoritative duplicate
	// guard; callers must not double-count when inserted is false.
	Insert(ctx context.Context, db *gorm.DB, order *Order) (inserted bool, err error)

	FindByExternalID(ctx context.Context, db *gorm.DB, platformID snowflake.ID, externalID string) (*Order, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Order, error)

	// ConfirmPayout mutates the only fields allowed to change after
	// creation.
	ConfirmPayout(ctx context.Context, db *gorm.DB, id snowflake.ID, payoutDate time.Time) (int64, error)
}
