package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/soleworks/soleledger/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) (bool, error) {
	result := db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, inventory_item_id, platform_id, external_id, status, currency,
			sold_at, gross_sale, platform_fee, net_proceeds, gross_profit, net_profit,
			roi_percent, shelf_life_days, payout_received, payout_date, raw_data,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform_id, external_id) DO NOTHING`,
		order.ID,
		order.InventoryItemID,
		order.PlatformID,
		order.ExternalID,
		string(order.Status),
		order.Currency,
		order.SoldAt,
		order.GrossSale,
		order.PlatformFee,
		order.NetProceeds,
		order.GrossProfit,
		order.NetProfit,
		order.ROIPercent,
		order.ShelfLifeDays,
		order.PayoutReceived,
		order.PayoutDate,
		order.RawData,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByExternalID(ctx context.Context, db *gorm.DB, platformID snowflake.ID, externalID string) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).
		Where("platform_id = ? AND external_id = ?", platformID, externalID).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Order, error) {
	var order domain.Order
	err := db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Order, error) {
	stmt := db.WithContext(ctx).Model(&domain.Order{})

	if filter.PlatformID != 0 {
		stmt = stmt.Where("platform_id = ?", filter.PlatformID)
	}
	if filter.SoldAfter != nil {
		stmt = stmt.Where("sold_at >= ?", *filter.SoldAfter)
	}
	if filter.SoldBefore != nil {
		stmt = stmt.Where("sold_at < ?", *filter.SoldBefore)
	}
	if filter.Cursor != 0 {
		stmt = stmt.Where("id < ?", filter.Cursor)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 250 {
		limit = 25
	}

	var orders []*domain.Order
	// Fetch one extra row so callers can detect another page.
	if err := stmt.Order("id DESC").Limit(limit + 1).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repo) ConfirmPayout(ctx context.Context, db *gorm.DB, id snowflake.ID, payoutDate time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE orders
		 SET payout_received = ?, payout_date = ?, updated_at = ?
		 WHERE id = ?`,
		true,
		payoutDate,
		time.Now().UTC(),
		id,
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
