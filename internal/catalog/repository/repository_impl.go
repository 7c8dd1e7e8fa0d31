package repository

import (
	"context"
	"strings"

	"github.com/kahera/kahera/internal/catalog/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Omit("Categories").Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).Preload("Categories").Where("id = ?", id).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id int64) (*domain.Product, error) {
	var p domain.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) UpdateStock(ctx context.Context, tx *gorm.DB, id int64, quantity int) error {
	return tx.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", id).
		Update("stock_quantity", quantity).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":                product.Name,
			"price":               product.Price,
			"low_stock_threshold": product.LowStockThreshold,
			"image_path":          product.ImagePath,
			"updated_at":          product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, tx *gorm.DB, id int64) error {
	if err := tx.WithContext(ctx).
		Exec(`DELETE FROM category_product WHERE product_id = ?`, id).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&domain.Product{}, "id = ?", id).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req domain.ListProductsRequest) ([]domain.Product, int64, error) {
	stmt := db.WithContext(ctx).Model(&domain.Product{}).Preload("Categories")

	if search := strings.TrimSpace(req.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		stmt = stmt.Where(
			`LOWER(name) LIKE ? OR id IN (
			   SELECT cp.product_id FROM category_product cp
			   JOIN categories c ON c.id = cp.category_id
			   WHERE LOWER(c.category_name) LIKE ?)`,
			like, like,
		)
	}

	if category := strings.TrimSpace(req.Category); category != "" && !strings.EqualFold(category, "all") {
		if strings.EqualFold(category, "uncategorized") {
			stmt = stmt.Where(`id NOT IN (SELECT product_id FROM category_product)`)
		} else {
			stmt = stmt.Where(
				`id IN (
				   SELECT cp.product_id FROM category_product cp
				   JOIN categories c ON c.id = cp.category_id
				   WHERE LOWER(c.category_name) = ? OR CAST(c.id AS TEXT) = ?)`,
				strings.ToLower(category), category,
			)
		}
	}

	switch req.Status {
	case domain.StatusOutOfStock:
		stmt = stmt.Where("stock_quantity = 0")
	case domain.StatusLowStock:
		stmt = stmt.Where("stock_quantity > 0 AND stock_quantity <= low_stock_threshold")
	case domain.StatusInStock:
		stmt = stmt.Where("stock_quantity > low_stock_threshold")
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Admin view surfaces trouble first; the sell view leads with what
	// can actually be sold.
	order := `CASE
		WHEN stock_quantity = 0 THEN 1
		WHEN stock_quantity <= low_stock_threshold THEN 2
		ELSE 3
	END`
	if req.SellOrder {
		order = `CASE
			WHEN stock_quantity > low_stock_threshold THEN 1
			WHEN stock_quantity > 0 THEN 2
			ELSE 3
		END`
	}

	var items []domain.Product
	err := stmt.Order(order).
		Order("created_at DESC").
		Offset((req.Page - 1) * req.PerPage).
		Limit(req.PerPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repo) ListLowStock(ctx context.Context, db *gorm.DB) ([]domain.Product, error) {
	var items []domain.Product
	err := db.WithContext(ctx).
		Where("stock_quantity <= low_stock_threshold").
		Order("stock_quantity ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ReplaceCategories(ctx context.Context, db *gorm.DB, product *domain.Product, categoryIDs []int64) error {
	assoc := db.WithContext(ctx).Model(product).Association("Categories")
	if len(categoryIDs) == 0 {
		return assoc.Clear()
	}
	categories := make([]domain.Category, 0, len(categoryIDs))
	for _, id := range categoryIDs {
		categories = append(categories, domain.Category{ID: id})
	}
	return assoc.Replace(&categories)
}

func (r *repo) CreateCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Create(category).Error
}

func (r *repo) FindCategoryByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *repo) UpdateCategory(ctx context.Context, db *gorm.DB, category *domain.Category) error {
	return db.WithContext(ctx).Model(&domain.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]any{
			"category_name": category.CategoryName,
			"updated_at":    category.UpdatedAt,
		}).Error
}

func (r *repo) DeleteCategory(ctx context.Context, db *gorm.DB, id int64) error {
	if err := db.WithContext(ctx).
		Exec(`DELETE FROM category_product WHERE category_id = ?`, id).Error; err != nil {
		return err
	}
	return db.WithContext(ctx).Delete(&domain.Category{}, "id = ?", id).Error
}

func (r *repo) FindAllCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var items []domain.Category
	err := db.WithContext(ctx).Order("category_name ASC").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) CountCategories(ctx context.Context, db *gorm.DB, ids []int64) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Category{}).
		Where("id IN ?", ids).
		Count(&count).Error
	return count, err
}
