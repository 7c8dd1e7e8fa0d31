package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/kahera/kahera/internal/ledger/domain"
	"github.com/kahera/kahera/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("ledger.service"),
		genID:   p.GenID,
		metrics: p.Metrics,
	}
}

func (s *Service) AppendInventory(ctx context.Context, tx *gorm.DB, entry domain.InventoryEntry) error {
	at := entry.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := domain.InventoryLog{
		ID:             s.genID.Generate().Int64(),
		UserID:         entry.UserID,
		ProductID:      entry.ProductID,
		Action:         entry.Action,
		QuantityChange: entry.QuantityChange,
		SnapshotName:   entry.SnapshotName,
		Details:        datatypes.JSONMap(entry.Details),
		CreatedAt:      at,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	s.metrics.ObserveLedgerAppend("inventory", entry.Action)
	return nil
}

func (s *Service) AppendSale(ctx context.Context, tx *gorm.DB, entry domain.SaleEntry) error {
	at := entry.OccurredAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	row := domain.SalesLog{
		ID:        s.genID.Generate().Int64(),
		UserID:    entry.UserID,
		SaleID:    entry.SaleID,
		Action:    entry.Action,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	s.metrics.ObserveLedgerAppend("sales", entry.Action)
	return nil
}

func (s *Service) ListInventory(ctx context.Context, req domain.ListInventoryRequest) ([]domain.InventoryLog, int64, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.InventoryLog{})
	if req.UserID != nil {
		stmt = stmt.Where("user_id = ?", *req.UserID)
	}
	if req.ProductID != nil {
		stmt = stmt.Where("product_id = ?", *req.ProductID)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(req.Page, req.PerPage)
	var items []domain.InventoryLog
	err := stmt.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Service) ListSales(ctx context.Context, req domain.ListSalesRequest) ([]domain.SalesLog, int64, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.SalesLog{})
	if req.UserID != nil {
		stmt = stmt.Where("user_id = ?", *req.UserID)
	}
	if req.Date != nil {
		loc := req.Loc
		if loc == nil {
			loc = time.UTC
		}
		day := req.Date.In(loc)
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc).UTC()
		stmt = stmt.Where("created_at >= ? AND created_at < ?", start, start.Add(24*time.Hour))
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(req.Page, req.PerPage)
	var items []domain.SalesLog
	err := stmt.Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	return page, perPage
}
