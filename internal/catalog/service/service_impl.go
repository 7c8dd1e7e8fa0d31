package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kahera/kahera/internal/catalog/domain"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	"github.com/kahera/kahera/internal/metrics"
	"github.com/kahera/kahera/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Ledger  ledgerdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	genID   *snowflake.Node
	ledger  ledgerdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("catalog.service"),
		repo:    p.Repo,
		genID:   p.GenID,
		ledger:  p.Ledger,
		metrics: p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}
	if req.StockQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}

	threshold := domain.DefaultLowStockThreshold
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, domain.ErrInvalidThreshold
		}
		threshold = *req.LowStockThreshold
	}

	if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:                s.genID.Generate().Int64(),
		Name:              name,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		ImagePath:         req.ImagePath,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, product); err != nil {
			return err
		}
		if len(req.CategoryIDs) > 0 {
			if err := s.repo.ReplaceCategories(ctx, tx, product, req.CategoryIDs); err != nil {
				return err
			}
		}
		productID := product.ID
		return s.ledger.AppendInventory(ctx, tx, ledgerdomain.InventoryEntry{
			UserID:         req.ActingUserID,
			ProductID:      &productID,
			Action:         ledgerdomain.ActionCreated,
			QuantityChange: product.StockQuantity,
			SnapshotName:   product.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, s.db, product.ID)
}

func (s *Service) Update(ctx context.Context, req domain.UpdateProductRequest) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return nil, domain.ErrInvalidPrice
	}

	product, err := s.repo.FindByID(ctx, s.db, req.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.checkCategories(ctx, req.CategoryIDs); err != nil {
		return nil, err
	}

	product.Name = name
	product.Price = req.Price
	if req.LowStockThreshold != nil {
		if *req.LowStockThreshold < 0 {
			return nil, domain.ErrInvalidThreshold
		}
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.ImagePath != nil {
		product.ImagePath = req.ImagePath
	}
	product.UpdatedAt = time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, product); err != nil {
			return err
		}
		if err := s.repo.ReplaceCategories(ctx, tx, product, req.CategoryIDs); err != nil {
			return err
		}
		productID := product.ID
		return s.ledger.AppendInventory(ctx, tx, ledgerdomain.InventoryEntry{
			UserID:       req.ActingUserID,
			ProductID:    &productID,
			Action:       ledgerdomain.ActionUpdate,
			SnapshotName: product.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, s.db, product.ID)
}

func (s *Service) Delete(ctx context.Context, actingUserID, productID int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.deleteOne(ctx, tx, actingUserID, productID)
	})
}

func (s *Service) DeleteMultiple(ctx context.Context, actingUserID int64, productIDs []int64) (int, error) {
	if len(productIDs) == 0 {
		return 0, domain.ErrNotFound
	}

	deleted := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range productIDs {
			if err := s.deleteOne(ctx, tx, actingUserID, id); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// deleteOne captures the snapshot name before the row disappears so
// the ledger entry outlives the product.
func (s *Service) deleteOne(ctx context.Context, tx *gorm.DB, actingUserID, productID int64) error {
	product, err := s.repo.FindByIDForUpdate(ctx, tx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}

	id := product.ID
	entry := ledgerdomain.InventoryEntry{
		UserID:         actingUserID,
		ProductID:      &id,
		Action:         ledgerdomain.ActionDeleted,
		QuantityChange: -product.StockQuantity,
		SnapshotName:   product.Name,
	}
	if err := s.ledger.AppendInventory(ctx, tx, entry); err != nil {
		return err
	}

	s.log.Info("product deleted",
		zap.Int64("product_id", product.ID),
		zap.String("snapshot_name", product.Name),
		zap.Int("stock_quantity", product.StockQuantity),
	)
	return s.repo.Delete(ctx, tx, productID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

func (s *Service) List(ctx context.Context, req domain.ListProductsRequest) (*domain.ProductPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 10
	}

	items, total, err := s.repo.List(ctx, s.db, req)
	if err != nil {
		return nil, err
	}

	lastPage := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &domain.ProductPage{
		Items:       items,
		CurrentPage: req.Page,
		LastPage:    lastPage,
		PerPage:     req.PerPage,
		Total:       total,
		HasMore:     req.Page < lastPage,
	}, nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.ListLowStock(ctx, s.db)
	if err != nil {
		return nil, err
	}
	s.metrics.SetLowStockCount(float64(len(products)))
	return products, nil
}

func (s *Service) Restock(ctx context.Context, req domain.AdjustStockRequest) (*domain.Product, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var updated *domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByIDForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		product.StockQuantity += req.Quantity
		if err := s.repo.UpdateStock(ctx, tx, product.ID, product.StockQuantity); err != nil {
			return err
		}

		id := product.ID
		if err := s.ledger.AppendInventory(ctx, tx, ledgerdomain.InventoryEntry{
			UserID:         req.ActingUserID,
			ProductID:      &id,
			Action:         ledgerdomain.ActionRestock,
			QuantityChange: req.Quantity,
			SnapshotName:   product.Name,
			Details: map[string]interface{}{
				"stock_before": product.StockQuantity - req.Quantity,
				"stock_after":  product.StockQuantity,
			},
		}); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		if db.IsLockTimeoutErr(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) Deduct(ctx context.Context, req domain.AdjustStockRequest) (*domain.Product, error) {
	if req.Quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	var updated *domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.repo.FindByIDForUpdate(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if product.StockQuantity < req.Quantity {
			return &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.StockQuantity,
				Requested:   req.Quantity,
			}
		}

		product.StockQuantity -= req.Quantity
		if err := s.repo.UpdateStock(ctx, tx, product.ID, product.StockQuantity); err != nil {
			return err
		}

		snapshotName := product.Name
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			snapshotName = reason
		}
		id := product.ID
		if err := s.ledger.AppendInventory(ctx, tx, ledgerdomain.InventoryEntry{
			UserID:         req.ActingUserID,
			ProductID:      &id,
			Action:         ledgerdomain.ActionDeducted,
			QuantityChange: -req.Quantity,
			SnapshotName:   snapshotName,
			Details: map[string]interface{}{
				"stock_before": product.StockQuantity + req.Quantity,
				"stock_after":  product.StockQuantity,
			},
		}); err != nil {
			return err
		}
		updated = product
		return nil
	})
	if err != nil {
		if db.IsLockTimeoutErr(err) {
			return nil, domain.ErrConcurrencyConflict
		}
		return nil, err
	}
	return updated, nil
}

func (s *Service) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:           s.genID.Generate().Int64(),
		CategoryName: name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateCategory(ctx, s.db, category); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	category, err := s.repo.FindCategoryByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	category.CategoryName = name
	category.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCategory(ctx, s.db, category); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrCategoryExists
		}
		return nil, err
	}
	return category, nil
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	category, err := s.repo.FindCategoryByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if category == nil {
		return domain.ErrCategoryNotFound
	}
	return s.repo.DeleteCategory(ctx, s.db, id)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.FindAllCategories(ctx, s.db)
}

func (s *Service) checkCategories(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.repo.CountCategories(ctx, s.db, ids)
	if err != nil {
		return err
	}
	if count != int64(len(ids)) {
		return domain.ErrCategoryNotFound
	}
	return nil
}
