package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kahera/kahera/internal/sale/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, tx *gorm.DB, sale *domain.Sale) error {
	return tx.WithContext(ctx).Omit("Items").Create(sale).Error
}

func (r *repo) CreateItems(ctx context.Context, tx *gorm.DB, items []domain.SaleItem) error {
	if len(items) == 0 {
		return nil
	}
	return tx.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListRequest) ([]domain.Sale, int64, error) {
	query := db.WithContext(ctx).Model(&domain.Sale{})
	if req.UserID != nil {
		query = query.Where("user_id = ?", *req.UserID)
	}
	if req.Date != nil {
		loc := req.Loc
		if loc == nil {
			loc = time.UTC
		}
		day := req.Date.In(loc)
		from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
		query = query.Where("created_at >= ? AND created_at < ?", from.UTC(), from.AddDate(0, 0, 1).UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var sales []domain.Sale
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((req.Page - 1) * req.PerPage).
		Limit(req.PerPage).
		Find(&sales).Error
	if err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	if err := tx.WithContext(ctx).Where("sale_id = ?", id).Delete(&domain.SaleItem{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sale{}).Error
}

func (r *repo) SumBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	return r.sum(ctx, db, nil, from, to)
}

func (r *repo) CountBetween(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	return r.count(ctx, db, nil, from, to)
}

func (r *repo) SumBetweenForUser(ctx context.Context, db *gorm.DB, userID int64, from, to time.Time) (int64, error) {
	return r.sum(ctx, db, &userID, from, to)
}

func (r *repo) CountBetweenForUser(ctx context.Context, db *gorm.DB, userID int64, from, to time.Time) (int64, error) {
	return r.count(ctx, db, &userID, from, to)
}

func (r *repo) sum(ctx context.Context, db *gorm.DB, userID *int64, from, to time.Time) (int64, error) {
	query := db.WithContext(ctx).Model(&domain.Sale{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var total *int64
	if err := query.Select("SUM(total_amount)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repo) count(ctx context.Context, db *gorm.DB, userID *int64, from, to time.Time) (int64, error) {
	query := db.WithContext(ctx).Model(&domain.Sale{}).
		Where("created_at >= ? AND created_at < ?", from, to)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
