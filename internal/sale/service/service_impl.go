package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
	ledgerdomain "github.com/kahera/kahera/internal/ledger/domain"
	"github.com/kahera/kahera/internal/metrics"
	"github.com/kahera/kahera/internal/sale/domain"
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
	Catalog catalogdomain.Repository
	Ledger  ledgerdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	catalog catalogdomain.Repository
	ledger  ledgerdomain.Service
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("sale.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		catalog: p.Catalog,
		ledger:  p.Ledger,
		metrics: p.Metrics,
	}
}

// Create runs the whole checkout in one transaction. Each product row
// is locked before its stock is checked, so two concurrent sales over
// the same product serialize and the loser sees the decremented
// quantity. Any failure rolls back every stock change, item row and
// ledger entry.
func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Sale, error) {
	if len(req.Items) == 0 {
		return nil, domain.ErrEmptySale
	}
	required := make(map[int64]int, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			return nil, domain.ErrInvalidItem
		}
		required[item.ProductID] += item.Quantity
	}

	// Lock rows in ascending ID order so concurrent multi-item sales
	// cannot deadlock each other.
	productIDs := make([]int64, 0, len(required))
	for id := range required {
		productIDs = append(productIDs, id)
	}
	sort.Slice(productIDs, func(i, j int) bool { return productIDs[i] < productIDs[j] })

	sale := &domain.Sale{
		ID:     s.genID.Generate().Int64(),
		UserID: req.UserID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products := make(map[int64]*catalogdomain.Product, len(productIDs))
		for _, id := range productIDs {
			product, err := s.catalog.FindByIDForUpdate(ctx, tx, id)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrProductGone
			}
			if product.StockQuantity < required[id] {
				s.metrics.ObserveStockRejection("sale")
				return &catalogdomain.InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.StockQuantity,
					Requested:   required[id],
				}
			}
			products[id] = product
		}

		for _, id := range productIDs {
			product := products[id]
			product.StockQuantity -= required[id]
			if err := s.catalog.UpdateStock(ctx, tx, id, product.StockQuantity); err != nil {
				return err
			}
		}

		var total int64
		items := make([]domain.SaleItem, 0, len(req.Items))
		for _, line := range req.Items {
			product := products[line.ProductID]
			productID := product.ID
			item := domain.SaleItem{
				ID:               s.genID.Generate().Int64(),
				SaleID:           sale.ID,
				ProductID:        &productID,
				Quantity:         line.Quantity,
				Price:            product.Price,
				Subtotal:         product.Price * int64(line.Quantity),
				SnapshotName:     product.Name,
				SnapshotQuantity: line.Quantity,
				SnapshotPrice:    product.Price,
			}
			total += item.Subtotal
			items = append(items, item)
		}
		sale.TotalAmount = total

		if req.DeclaredTotal != nil && *req.DeclaredTotal != total {
			s.log.Warn("declared total mismatch",
				zap.Int64("sale_id", sale.ID),
				zap.Int64("declared", *req.DeclaredTotal),
				zap.Int64("computed", total),
			)
		}

		if err := s.repo.Create(ctx, tx, sale); err != nil {
			return err
		}
		if err := s.repo.CreateItems(ctx, tx, items); err != nil {
			return err
		}

		for i := range items {
			if err := s.ledger.AppendInventory(ctx, tx, ledgerdomain.InventoryEntry{
				UserID:         req.UserID,
				ProductID:      items[i].ProductID,
				Action:         ledgerdomain.ActionDeducted,
				QuantityChange: -items[i].SnapshotQuantity,
				SnapshotName:   items[i].SnapshotName,
				Details:        map[string]interface{}{"sale_id": sale.ID},
			}); err != nil {
				return err
			}
		}
		return s.ledger.AppendSale(ctx, tx, ledgerdomain.SaleEntry{
			UserID: req.UserID,
			SaleID: sale.ID,
			Action: ledgerdomain.SaleActionCreated,
		})
	})
	if err != nil {
		if db.IsLockTimeoutErr(err) {
			return nil, domain.ErrConcurrency
		}
		return nil, err
	}

	loc := req.Loc
	if loc == nil {
		loc = time.UTC
	}

	s.metrics.ObserveSale(sale.TotalAmount)
	s.log.Info("sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.Int64("user_id", req.UserID),
		zap.Int64("total_amount", sale.TotalAmount),
		zap.Int("items", len(req.Items)),
		zap.String("local_date", sale.CreatedAt.In(loc).Format("2006-01-02")),
	)
	return s.repo.FindByID(ctx, s.db, sale.ID)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	sale, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	fillLegacyNames(sale)
	return sale, nil
}

// Rows written before snapshots existed carry neither a name nor a
// surviving product reference.
const deletedProductName = "Deleted Product"

func fillLegacyNames(sale *domain.Sale) {
	for i := range sale.Items {
		if sale.Items[i].SnapshotName == "" && sale.Items[i].ProductID == nil {
			sale.Items[i].SnapshotName = deletedProductName
		}
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (*domain.SalePage, error) {
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
	for i := range items {
		fillLegacyNames(&items[i])
	}

	lastPage := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	return &domain.SalePage{
		Items:       items,
		CurrentPage: req.Page,
		LastPage:    lastPage,
		PerPage:     req.PerPage,
		Total:       total,
		HasMore:     req.Page < lastPage,
	}, nil
}

// Delete removes the sale record without restoring stock; the goods
// already left the counter. The deletion lands in sales_logs, which
// holds only a weak reference and so survives the sale row.
func (s *Service) Delete(ctx context.Context, actingUserID, saleID int64) error {
	sale, err := s.repo.FindByID(ctx, s.db, saleID)
	if err != nil {
		return err
	}
	if sale == nil {
		return domain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.AppendSale(ctx, tx, ledgerdomain.SaleEntry{
			UserID: actingUserID,
			SaleID: saleID,
			Action: ledgerdomain.SaleActionDeleted,
		}); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, saleID)
	})
}
