// Package domain contains the catalog types: products, categories and
// their many-to-many relation.
package domain

import (
	"encoding/json"
	"time"
)

// Stock status values derived from stock_quantity against
// low_stock_threshold.
const (
	StatusOutOfStock = "out_of_stock"
	StatusLowStock   = "low_stock"
	StatusInStock    = "in_stock"
)

const DefaultLowStockThreshold = 10

// Product owns the stock quantity. Prices are stored in centavos.
type Product struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	Name              string     `json:"name" gorm:"type:text;not null;index"`
	Price             int64      `json:"price" gorm:"not null"`
	StockQuantity     int        `json:"stock_quantity" gorm:"column:stock_quantity;not null;default:0"`
	LowStockThreshold int        `json:"low_stock_threshold" gorm:"column:low_stock_threshold;not null;default:10"`
	ImagePath         *string    `json:"image_path,omitempty" gorm:"column:image_path;type:text"`
	Categories        []Category `json:"categories,omitempty" gorm:"many2many:category_product"`
	CreatedAt         time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Product) TableName() string { return "products" }

// Status derives the stock lifecycle state. Never persisted.
func (p Product) Status() string {
	switch {
	case p.StockQuantity == 0:
		return StatusOutOfStock
	case p.StockQuantity <= p.LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// MarshalJSON appends the derived status so every product payload
// carries it.
func (p Product) MarshalJSON() ([]byte, error) {
	type plain Product
	return json.Marshal(struct {
		plain
		Status string `json:"status"`
	}{plain(p), p.Status()})
}

type Category struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	CategoryName string    `json:"category_name" gorm:"column:category_name;type:text;not null;uniqueIndex"`
	CreatedAt    time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Category) TableName() string { return "categories" }
