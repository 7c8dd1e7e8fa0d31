package domain

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the catalog store contract. FindByIDForUpdate holds an
// exclusive row lock for the lifetime of the caller's transaction; all
// stock mutation goes through the lock-then-write pattern.
type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id int64) (*Product, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*Product, error)
	UpdateStock(ctx context.Context, tx *gorm.DB, id int64, quantity int) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, tx *gorm.DB, id int64) error
	List(ctx context.Context, db *gorm.DB, req ListProductsRequest) ([]Product, int64, error)
	ListLowStock(ctx context.Context, db *gorm.DB) ([]Product, error)
	ReplaceCategories(ctx context.Context, db *gorm.DB, product *Product, categoryIDs []int64) error

	CreateCategory(ctx context.Context, db *gorm.DB, category *Category) error
	FindCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*Category, error)
	UpdateCategory(ctx context.Context, db *gorm.DB, category *Category) error
	DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error
	FindAllCategories(ctx context.Context, db *gorm.DB) ([]Category, error)
	CountCategories(ctx context.Context, db *gorm.DB, ids []int64) (int64, error)
}
