package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByName(ctx context.Context, db *gorm.DB, name string) (*Platform, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]Platform, error)
	ActiveSchedule(ctx context.Context, db *gorm.DB, platformID snowflake.ID) (*FeeSchedule, error)
	Upsert(ctx context.Context, db *gorm.DB, platform *Platform, schedule *FeeSchedule) error
}
