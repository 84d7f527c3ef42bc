package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/inventory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, item *domain.InventoryItem) error {
	return db.WithContext(ctx).Create(item).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) ResolveInStock(ctx context.Context, db *gorm.DB, sku, sizeValue, sizeRegion string) ([]domain.InventoryItem, error) {
	var items []domain.InventoryItem
	err := db.WithContext(ctx).Raw(
		`SELECT i.* FROM inventory_items i
		 JOIN products p ON p.id = i.product_id
		 JOIN sizes s ON s.id = i.size_id
		 WHERE p.sku = ? AND s.value = ? AND s.region = ? AND i.status = ?
		 ORDER BY i.created_at ASC`,
		strings.TrimSpace(sku),
		strings.TrimSpace(sizeValue),
		strings.ToUpper(strings.TrimSpace(sizeRegion)),
		string(domain.StatusInStock),
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) MarkSold(ctx context.Context, db *gorm.DB, id snowflake.ID, roi *decimal.Decimal, shelfLife *int, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE inventory_items
		 SET status = ?, roi_percent = ?, shelf_life_days = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		string(domain.StatusSold),
		roi,
		shelfLife,
		now,
		id,
		string(domain.StatusInStock),
	)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) FindByExternalRef(ctx context.Context, db *gorm.DB, key, value string) (*domain.InventoryItem, error) {
	var expr string
	switch db.Dialector.Name() {
	case "postgres":
		expr = "external_ids ->> ?"
	case "mysql":
		expr = "JSON_UNQUOTE(JSON_EXTRACT(external_ids, CONCAT('$.', ?)))"
	default:
		// sqlite stores the JSONMap payload as a blob.
		expr = "json_extract(CAST(external_ids AS TEXT), '$.' || ?)"
	}

	var item domain.InventoryItem
	err := db.WithContext(ctx).Where(expr+" = ?", key, value).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.InventoryItem, error) {
	stmt := db.WithContext(ctx).Model(&domain.InventoryItem{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.SKU != "" {
		stmt = stmt.Where("product_id IN (SELECT id FROM products WHERE sku = ?)", strings.TrimSpace(filter.SKU))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 250 {
		limit = 100
	}

	var items []domain.InventoryItem
	if err := stmt.Order("created_at DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
