package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	authdomain "github.com/kahera/kahera/internal/auth/domain"
	saledomain "github.com/kahera/kahera/internal/sale/domain"
)

type SaleItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type SaleRequest struct {
	Items       []SaleItemRequest `json:"items"`
	TotalAmount *int64            `json:"total_amount"`
}

func (s *Server) CreateSale(c *gin.Context) {
	var req SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Checkout validation failures are fixed at 422.
		AbortWithError(c, withStatus(http.StatusUnprocessableEntity, invalidRequestError()))
		return
	}

	items := make([]saledomain.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, saledomain.LineItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	sale, err := s.saleSvc.Create(c.Request.Context(), saledomain.CreateRequest{
		UserID:        s.userID(c),
		Items:         items,
		DeclaredTotal: req.TotalAmount,
		Loc:           s.location(c),
	})
	if err != nil {
		if isValidationError(err) {
			err = withStatus(http.StatusUnprocessableEntity, err)
		}
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "sale recorded", "sale_id": sale.ID})
}

func (s *Server) GetSale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	sale, err := s.saleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Cashiers may only inspect their own sales.
	if s.userRole(c) != authdomain.RoleAdmin && sale.UserID != s.userID(c) {
		AbortWithError(c, ErrForbidden)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

func (s *Server) ListSales(c *gin.Context) {
	page, perPage := parsePagination(c)
	req := saledomain.ListRequest{
		Page:    page,
		PerPage: perPage,
		Loc:     s.location(c),
	}

	date, err := parseOptionalDate(c.Query("date"), s.location(c))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "date must be YYYY-MM-DD"))
		return
	}
	req.Date = date

	if s.userRole(c) == authdomain.RoleAdmin {
		userID, err := parseOptionalInt64(c.Query("user_id"))
		if err != nil {
			AbortWithError(c, newValidationError("user_id", "invalid_user_id", "user_id must be an integer"))
			return
		}
		req.UserID = userID
	} else {
		own := s.userID(c)
		req.UserID = &own
	}

	result, err := s.saleSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) DeleteSale(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.saleSvc.Delete(c.Request.Context(), s.userID(c), id); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
