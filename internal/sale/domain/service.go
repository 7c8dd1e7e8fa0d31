package domain

import (
	"context"
	"errors"
	"time"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Sale, error)
	Get(ctx context.Context, id int64) (*Sale, error)
	List(ctx context.Context, req ListRequest) (*SalePage, error)
	Delete(ctx context.Context, actingUserID, saleID int64) error
}

// CreateRequest is one checkout: every line item commits or none do.
// DeclaredTotal is the client's display total; the stored total is
// always recomputed server-side.
type CreateRequest struct {
	UserID        int64
	Items         []LineItem
	DeclaredTotal *int64
	Loc           *time.Location
}

type LineItem struct {
	ProductID int64
	Quantity  int
}

type ListRequest struct {
	UserID  *int64
	Date    *time.Time
	Loc     *time.Location
	Page    int
	PerPage int
}

type SalePage struct {
	Items       []Sale `json:"data"`
	CurrentPage int    `json:"current_page"`
	LastPage    int    `json:"last_page"`
	PerPage     int    `json:"per_page"`
	Total       int64  `json:"total"`
	HasMore     bool   `json:"hasMore"`
}

var (
	ErrNotFound    = errors.New("sale_not_found")
	ErrEmptySale   = errors.New("empty_sale")
	ErrInvalidItem = errors.New("invalid_item")
	ErrProductGone = errors.New("product_not_found")
	ErrConcurrency = errors.New("concurrency_conflict")
)
