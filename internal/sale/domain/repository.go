package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, tx *gorm.DB, sale *Sale) error
	CreateItems(ctx context.Context, tx *gorm.DB, items []SaleItem) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Sale, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Sale, int64, error)
	Delete(ctx context.Context, tx *gorm.DB, id int64) error

	// SumBetween totals sale amounts in the half-open window [from, to).
	SumBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	CountBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error)
	SumBetweenForUser(ctx context.Context, db *gorm.DB, userID int64, from, to time.Time) (int64, error)
	CountBetweenForUser(ctx context.Context, db *gorm.DB, userID int64, from, to time.Time) (int64, error)
}
