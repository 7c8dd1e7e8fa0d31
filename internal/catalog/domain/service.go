package domain

import (
	"context"
	"errors"
)

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (*Product, error)
	Update(ctx context.Context, req UpdateProductRequest) (*Product, error)
	Delete(ctx context.Context, actingUserID, productID int64) error
	DeleteMultiple(ctx context.Context, actingUserID int64, productIDs []int64) (int, error)
	Get(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, req ListProductsRequest) (*ProductPage, error)
	LowStock(ctx context.Context) ([]Product, error)

	Restock(ctx context.Context, req AdjustStockRequest) (*Product, error)
	Deduct(ctx context.Context, req AdjustStockRequest) (*Product, error)

	CreateCategory(ctx context.Context, name string) (*Category, error)
	UpdateCategory(ctx context.Context, id int64, name string) (*Category, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
}

// CreateProductRequest enumerates exactly the assignable fields; stock
// arrives only through the initial quantity and later adjustments.
type CreateProductRequest struct {
	ActingUserID      int64
	Name              string
	Price             int64
	StockQuantity     int
	LowStockThreshold *int
	CategoryIDs       []int64
	ImagePath         *string
}

type UpdateProductRequest struct {
	ActingUserID      int64
	ProductID         int64
	Name              string
	Price             int64
	LowStockThreshold *int
	CategoryIDs       []int64
	ImagePath         *string
}

type AdjustStockRequest struct {
	ActingUserID int64
	ProductID    int64
	Quantity     int
	Reason       string
}

type ListProductsRequest struct {
	Search   string
	Category string
	Status   string
	Page     int
	PerPage  int
	// SellOrder flips the stock-status ordering so in-stock products
	// come first for the cashier view.
	SellOrder bool
}

type ProductPage struct {
	Items       []Product `json:"data"`
	CurrentPage int       `json:"current_page"`
	LastPage    int       `json:"last_page"`
	PerPage     int       `json:"per_page"`
	Total       int64     `json:"total"`
	HasMore     bool      `json:"hasMore"`
}

var (
	ErrNotFound         = errors.New("not_found")
	ErrCategoryNotFound = errors.New("category_not_found")
	ErrCategoryExists   = errors.New("category_exists")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidPrice     = errors.New("invalid_price")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidThreshold = errors.New("invalid_threshold")
)

// InsufficientStockError reports the product and availability so the
// caller can adjust quantities and resubmit.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return "insufficient stock"
}

// ErrConcurrencyConflict marks lock-wait timeouts; the whole call is
// safe to retry.
var ErrConcurrencyConflict = errors.New("concurrency_conflict")
