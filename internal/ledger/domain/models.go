// Package domain contains the append-only audit records for stock and
// sale lifecycle events.
package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Inventory actions, one per stock-affecting operation. The signed
// quantity change matches the action's direction: deducted and deleted
// carry negative values, created and restock positive ones.
const (
	ActionCreated  = "created"
	ActionUpdate   = "update"
	ActionRestock  = "restock"
	ActionDeducted = "deducted"
	ActionDeleted  = "deleted"
	ActionAdjusted = "adjusted"
)

// Sale lifecycle actions.
const (
	SaleActionCreated = "created"
	SaleActionUpdated = "updated"
	SaleActionDeleted = "deleted"
)

// InventoryLog records one stock-affecting operation. Rows are never
// updated or deleted; the product reference survives product deletion
// through snapshot_name.
type InventoryLog struct {
	ID             int64             `json:"id" gorm:"primaryKey"`
	UserID         int64             `json:"user_id" gorm:"column:user_id;not null;index:ix_inventory_logs_user_product,priority:1"`
	ProductID      *int64            `json:"product_id" gorm:"column:product_id;index:ix_inventory_logs_user_product,priority:2"`
	Action         string            `json:"action" gorm:"type:text;not null;default:adjusted"`
	QuantityChange int               `json:"quantity_change" gorm:"column:quantity_change"`
	SnapshotName   string            `json:"snapshot_name" gorm:"column:snapshot_name;type:text"`
	Details        datatypes.JSONMap `json:"details,omitempty" gorm:"column:details"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InventoryLog) TableName() string { return "inventory_logs" }

// SalesLog records one sale lifecycle event. The sale reference is
// deliberately weak so deletion events outlive the sale row.
type SalesLog struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"column:user_id;not null;index:ix_sales_logs_user_action,priority:1"`
	SaleID    int64     `json:"sale_id" gorm:"column:sale_id;not null"`
	Action    string    `json:"action" gorm:"type:text;not null;default:created;index:ix_sales_logs_user_action,priority:2"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (SalesLog) TableName() string { return "sales_logs" }
