package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	catalogdomain "github.com/kahera/kahera/internal/catalog/domain"
)

type ProductRequest struct {
	Name              string  `json:"name"`
	Price             int64   `json:"price"`
	StockQuantity     int     `json:"stock_quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold"`
	CategoryIDs       []int64 `json:"category_ids"`
	ImagePath         *string `json:"image_path"`
}

type BulkDeleteRequest struct {
	ProductIDs []int64 `json:"product_ids"`
}

type StockAdjustmentRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateProductRequest{
		ActingUserID:      s.userID(c),
		Name:              req.Name,
		Price:             req.Price,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		CategoryIDs:       req.CategoryIDs,
		ImagePath:         req.ImagePath,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Update(c.Request.Context(), catalogdomain.UpdateProductRequest{
		ActingUserID:      s.userID(c),
		ProductID:         id,
		Name:              req.Name,
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
		CategoryIDs:       req.CategoryIDs,
		ImagePath:         req.ImagePath,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.catalogSvc.Delete(c.Request.Context(), s.userID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Server) DeleteProducts(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if len(req.ProductIDs) == 0 {
		AbortWithError(c, newValidationError("product_ids", "required", "product_ids is required"))
		return
	}

	deleted, err := s.catalogSvc.DeleteMultiple(c.Request.Context(), s.userID(c), req.ProductIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "count": deleted})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	product, err := s.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (s *Server) ListProducts(c *gin.Context) {
	page, perPage := parsePagination(c)
	req := catalogdomain.ListProductsRequest{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Page:     page,
		PerPage:  perPage,
		// Cashiers see sellable products first.
		SellOrder: s.userRole(c) != authdomain.RoleAdmin || c.Query("view") == "sell",
	}

	result, err := s.catalogSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) LowStockProducts(c *gin.Context) {
	products, err := s.catalogSvc.LowStock(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.SetLowStockCount(float64(len(products)))
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) RestockProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Restock(c.Request.Context(), catalogdomain.AdjustStockRequest{
		ActingUserID: s.userID(c),
		ProductID:    id,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// DeductProduct removes stock outside a sale (damage, loss, manual
// correction). Unlike checkout, over-deducting here is a plain
// validation failure.
func (s *Server) DeductProduct(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req StockAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	product, err := s.catalogSvc.Deduct(c.Request.Context(), catalogdomain.AdjustStockRequest{
		ActingUserID: s.userID(c),
		ProductID:    id,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
	})
	if err != nil {
		var stockErr *catalogdomain.InsufficientStockError
		if errors.As(err, &stockErr) {
			s.metrics.ObserveStockRejection("deduct")
			AbortWithError(c, newValidationError("quantity", "insufficient_stock", "quantity exceeds available stock"))
			return
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}
