package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/soleworks/soleledger/internal/platform/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, name string) (*domain.Platform, error) {
	var p domain.Platform
	err := db.WithContext(ctx).
		Where("slug = ?", slug.Make(strings.TrimSpace(name))).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB) ([]domain.Platform, error) {
	var items []domain.Platform
	err := db.WithContext(ctx).Order("name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ActiveSchedule(ctx context.Context, db *gorm.DB, platformID snowflake.ID) (*domain.FeeSchedule, error) {
	var s domain.FeeSchedule
	err := db.WithContext(ctx).
		Where("platform_id = ?", platformID).
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *repo) Upsert(ctx context.Context, db *gorm.DB, platform *domain.Platform, schedule *domain.FeeSchedule) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Platform
		err := tx.Where("slug = ?", platform.Slug).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(platform).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			platform.ID = existing.ID
		}

		schedule.PlatformID = platform.ID

		var existingSchedule domain.FeeSchedule
		err = tx.Where("platform_id = ?", platform.ID).First(&existingSchedule).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(schedule).Error
		case err != nil:
			return err
		default:
			return tx.Model(&domain.FeeSchedule{}).
				Where("id = ?", existingSchedule.ID).
				Updates(map[string]any{
					"percentage_fee":       schedule.PercentageFee,
					"fixed_processing_fee": schedule.FixedProcessingFee,
					"currency":             schedule.Currency,
					"updated_at":           schedule.UpdatedAt,
				}).Error
		}
	})
}
