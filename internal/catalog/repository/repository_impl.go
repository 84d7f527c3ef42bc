package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"github.com/soleworks/soleledger/internal/catalog/domain"
	pkgdb "github.com/soleworks/soleledger/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	genID *snowflake.Node
}

func Provide(genID *snowflake.Node) domain.Repository {
	return &repo{genID: genID}
}

func (r *repo) GetOrCreateBrand(ctx context.Context, db *gorm.DB, name string) (*domain.Brand, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Unknown"
	}
	brandSlug := slug.Make(name)

	var brand domain.Brand
	err := db.WithContext(ctx).Where("slug = ?", brandSlug).First(&brand).Error
	if err == nil {
		return &brand, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	brand = domain.Brand{ID: r.genID.Generate(), Name: name, Slug: brandSlug}
	if err := db.WithContext(ctx).Create(&brand).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return r.GetOrCreateBrand(ctx, db, name)
		}
		return nil, err
	}
	return &brand, nil
}

func (r *repo) GetOrCreateCategory(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Sneakers"
	}
	categorySlug := slug.Make(name)

	var category domain.Category
	err := db.WithContext(ctx).Where("slug = ?", categorySlug).First(&category).Error
	if err == nil {
		return &category, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	category = domain.Category{ID: r.genID.Generate(), Name: name, Slug: categorySlug}
	if err := db.WithContext(ctx).Create(&category).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return r.GetOrCreateCategory(ctx, db, name)
		}
		return nil, err
	}
	return &category, nil
}

func (r *repo) GetOrCreateSupplier(ctx context.Context, db *gorm.DB, name string) (*domain.Supplier, error) {
	name = strings.TrimSpace(name)
	supplierSlug := slug.Make(name)

	var supplier domain.Supplier
	err := db.WithContext(ctx).Where("slug = ?", supplierSlug).First(&supplier).Error
	if err == nil {
		return &supplier, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	supplier = domain.Supplier{
		ID:           r.genID.Generate(),
		Name:         name,
		Slug:         supplierSlug,
		SupplierType: "retail",
		Status:       "active",
	}
	if err := db.WithContext(ctx).Create(&supplier).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return r.GetOrCreateSupplier(ctx, db, name)
		}
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) GetOrCreateProduct(ctx context.Context, db *gorm.DB, sku, name string, brandID, categoryID snowflake.ID) (*domain.Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, domain.ErrInvalidSKU
	}

	var product domain.Product
	err := db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	product = domain.Product{
		ID:         r.genID.Generate(),
		SKU:        sku,
		Name:       name,
		BrandID:    brandID,
		CategoryID: categoryID,
	}
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return r.GetOrCreateProduct(ctx, db, sku, name, brandID, categoryID)
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) GetOrCreateSize(ctx context.Context, db *gorm.DB, value, region string, categoryID snowflake.ID) (*domain.Size, error) {
	value = strings.TrimSpace(value)
	region = strings.ToUpper(strings.TrimSpace(region))

	size, err := r.FindSize(ctx, db, value, region, categoryID)
	if err != nil {
		return nil, err
	}
	if size != nil {
		return size, nil
	}

	created := domain.Size{
		ID:         r.genID.Generate(),
		Value:      value,
		Region:     region,
		CategoryID: categoryID,
	}
	if parsed, err := decimal.NewFromString(value); err == nil {
		created.StandardizedValue = &parsed
	}
	if err := db.WithContext(ctx).Create(&created).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return r.FindSize(ctx, db, value, region, categoryID)
		}
		return nil, err
	}
	return &created, nil
}

func (r *repo) FindProductBySKU(ctx context.Context, db *gorm.DB, sku string) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).Where("sku = ?", strings.TrimSpace(sku)).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindSize(ctx context.Context, db *gorm.DB, value, region string, categoryID snowflake.ID) (*domain.Size, error) {
	var size domain.Size
	err := db.WithContext(ctx).
		Where("value = ? AND region = ? AND category_id = ?", value, region, categoryID).
		First(&size).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &size, nil
}
