package domain

import "time"

// Sale totals are int64 centavos, summed from item subtotals at
// creation time.
type Sale struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	UserID      int64      `gorm:"index" json:"user_id"`
	TotalAmount int64      `json:"total_amount"`
	Items       []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Sale) TableName() string {
	return "sales"
}

// SaleItem carries point-in-time snapshots of the product name and
// price. ProductID is a weak reference: product deletion nulls it and
// the snapshot columns keep the line item readable.
type SaleItem struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	SaleID           int64     `gorm:"index" json:"sale_id"`
	ProductID        *int64    `gorm:"index" json:"product_id"`
	Quantity         int       `json:"quantity"`
	Price            int64     `json:"price"`
	Subtotal         int64     `json:"subtotal"`
	SnapshotName     string    `json:"snapshot_name"`
	SnapshotQuantity int       `json:"snapshot_quantity"`
	SnapshotPrice    int64     `json:"snapshot_price"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (SaleItem) TableName() string {
	return "sale_items"
}
