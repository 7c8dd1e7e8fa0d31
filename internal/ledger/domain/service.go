package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Service appends audit entries. Writers run against the caller's
// transaction handle so a failed ledger write rolls back the parent
// operation.
type Service interface {
	AppendInventory(ctx context.Context, tx *gorm.DB, entry InventoryEntry) error
	AppendSale(ctx context.Context, tx *gorm.DB, entry SaleEntry) error

	ListInventory(ctx context.Context, req ListInventoryRequest) ([]InventoryLog, int64, error)
	ListSales(ctx context.Context, req ListSalesRequest) ([]SalesLog, int64, error)
}

type InventoryEntry struct {
	UserID         int64
	ProductID      *int64
	Action         string
	QuantityChange int
	SnapshotName   string
	Details        map[string]interface{}
	OccurredAt     time.Time
}

type SaleEntry struct {
	UserID     int64
	SaleID     int64
	Action     string
	OccurredAt time.Time
}

type ListInventoryRequest struct {
	UserID    *int64
	ProductID *int64
	Page      int
	PerPage   int
}

type ListSalesRequest struct {
	UserID  *int64
	Date    *time.Time
	Loc     *time.Location
	Page    int
	PerPage int
}
